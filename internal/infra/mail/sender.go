package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

func NewEmailSender(host string, port int, user, password, from, senderName string) *EmailSender {
	return &EmailSender{
		Host:       host,
		Port:       port,
		User:       user,
		Password:   password,
		From:       from,
		SenderName: senderName,
	}
}

// Send entrega um email via SMTP. Inclui os headers de List-Unsubscribe
// exigidos para cold email (CAN-SPAM).
func (s *EmailSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.From, s.SenderName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetHeader("List-Unsubscribe", fmt.Sprintf("<mailto:%s?subject=UNSUBSCRIBE>", s.From))
	m.SetHeader("List-Unsubscribe-Post", "List-Unsubscribe=One-Click")
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	return nil
}
