package channel

import (
	"context"
	"log"
	"time"

	"github.com/alexandrehuynh/client-outreach/internal/entity"
	"github.com/alexandrehuynh/client-outreach/internal/infra/integration/twilio"
	"github.com/alexandrehuynh/client-outreach/internal/infra/mail"
	"github.com/alexandrehuynh/client-outreach/internal/usecase"
)

// SMSChannel implementa usecase.MessageChannel sobre a Twilio.
type SMSChannel struct {
	renderer *mail.Renderer
	client   *twilio.Client
}

func NewSMSChannel(renderer *mail.Renderer, client *twilio.Client) *SMSChannel {
	return &SMSChannel{renderer: renderer, client: client}
}

func (c *SMSChannel) Channel() entity.Channel { return entity.ChannelSMS }

func (c *SMSChannel) Send(ctx context.Context, lead entity.Lead, kind entity.TemplateKind) error {
	to, err := usecase.NormalizePhoneE164(lead.Phone)
	if err != nil {
		return err
	}

	body, err := c.renderer.RenderSMS(kind, lead.Name)
	if err != nil {
		return err
	}

	msg, err := c.client.SendMessage(ctx, to, body)
	if err != nil {
		return err
	}

	log.Printf("📱 SMS aceito pela Twilio: sid=%s status=%s", msg.SID, msg.Status)
	return nil
}

func (c *SMSChannel) FetchInbound(ctx context.Context, since time.Time) ([]entity.InboundMessage, error) {
	messages, err := c.client.ListInbound(ctx, since)
	if err != nil {
		return nil, err
	}

	inbound := make([]entity.InboundMessage, 0, len(messages))
	for _, msg := range messages {
		receivedAt, err := msg.SentAt()
		if err != nil {
			receivedAt = time.Now()
		}
		inbound = append(inbound, entity.InboundMessage{
			ID:         msg.SID,
			Channel:    entity.ChannelSMS,
			Sender:     msg.From,
			Body:       msg.Body,
			ReceivedAt: receivedAt,
		})
	}
	return inbound, nil
}
