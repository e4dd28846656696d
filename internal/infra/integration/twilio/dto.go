package twilio

import "time"

// Message é o recurso Message da Twilio (subconjunto usado aqui).
type Message struct {
	SID       string `json:"sid"`
	From      string `json:"from"`
	To        string `json:"to"`
	Body      string `json:"body"`
	Status    string `json:"status"`
	Direction string `json:"direction"`
	DateSent  string `json:"date_sent"`
}

// SentAt converte o timestamp RFC2822 que a Twilio devolve.
func (m Message) SentAt() (time.Time, error) {
	return time.Parse(time.RFC1123Z, m.DateSent)
}

type messageList struct {
	Messages []Message `json:"messages"`
}
