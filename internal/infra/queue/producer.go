package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/alexandrehuynh/client-outreach/internal/entity"
)

// InboundPayload é a resposta recebida via webhook, serializada para a fila.
// O worker consome e aplica a mesma classificação do pass de check-responses.
type InboundPayload struct {
	ID         string    `json:"id"`
	Channel    string    `json:"channel"` // email | sms
	Sender     string    `json:"sender"`
	Subject    string    `json:"subject,omitempty"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}

// ToInboundMessage converte o payload para a entidade do domínio.
func (p InboundPayload) ToInboundMessage() entity.InboundMessage {
	return entity.InboundMessage{
		ID:         p.ID,
		Channel:    entity.Channel(p.Channel),
		Sender:     p.Sender,
		Subject:    p.Subject,
		Body:       p.Body,
		ReceivedAt: p.ReceivedAt,
	}
}

type ProducerInterface interface {
	PublishInbound(ctx context.Context, payload InboundPayload) error
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *RabbitMQProducer) PublishInbound(ctx context.Context, payload InboundPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %v", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // Mensagem salva no disco
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %v", err)
	}

	return nil
}
