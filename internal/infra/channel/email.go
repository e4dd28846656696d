package channel

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alexandrehuynh/client-outreach/internal/entity"
	"github.com/alexandrehuynh/client-outreach/internal/infra/integration/msgraph"
	"github.com/alexandrehuynh/client-outreach/internal/infra/mail"
)

// EmailChannel implementa usecase.MessageChannel: envia pelo /sendMail do
// Graph (mesma conta que recebe as respostas) e lê a inbox do Outlook.
// Sem credenciais Graph, o envio cai para o sender SMTP.
type EmailChannel struct {
	renderer *mail.Renderer
	sender   *mail.EmailSender
	graph    *msgraph.Client
	mailbox  string
}

func NewEmailChannel(renderer *mail.Renderer, sender *mail.EmailSender, graph *msgraph.Client, mailbox string) *EmailChannel {
	return &EmailChannel{
		renderer: renderer,
		sender:   sender,
		graph:    graph,
		mailbox:  mailbox,
	}
}

func (c *EmailChannel) Channel() entity.Channel { return entity.ChannelEmail }

func (c *EmailChannel) Send(ctx context.Context, lead entity.Lead, kind entity.TemplateKind) error {
	subject, body, err := c.renderer.RenderEmail(kind, lead.Name)
	if err != nil {
		return err
	}

	if c.graph != nil && c.graph.Configured() {
		return c.graph.SendMail(ctx, c.mailbox, buildMail(subject, body, lead))
	}
	return c.sender.Send(lead.Email, subject, body)
}

// buildMail monta o payload do /sendMail. A instrução de opt-out vai no
// corpo do template; o Graph só aceita headers customizados com prefixo x-.
func buildMail(subject, body string, lead entity.Lead) msgraph.SendMailMessage {
	return msgraph.SendMailMessage{
		Subject: subject,
		Body: msgraph.MailBody{
			ContentType: "Text",
			Content:     body,
		},
		ToRecipients: []msgraph.MailRecipient{
			{EmailAddress: msgraph.MailAddress{Address: lead.Email, Name: lead.Name}},
		},
	}
}

func (c *EmailChannel) FetchInbound(ctx context.Context, since time.Time) ([]entity.InboundMessage, error) {
	messages, err := c.graph.ListInboxMessages(ctx, c.mailbox, since)
	if err != nil {
		return nil, err
	}

	inbound := make([]entity.InboundMessage, 0, len(messages))
	for _, msg := range messages {
		id := msg.ID
		if id == "" {
			id = uuid.New().String()
		}
		inbound = append(inbound, entity.InboundMessage{
			ID:         id,
			Channel:    entity.ChannelEmail,
			Sender:     msg.From.EmailAddress.Address,
			Subject:    msg.Subject,
			Body:       msg.Body.Content,
			ReceivedAt: msg.ReceivedDateTime,
		})
	}
	return inbound, nil
}
