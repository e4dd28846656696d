package entity

import "time"

// Channel é o meio de envio. Conjunto fechado: email e sms.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// TemplateKind identifica o estágio da mensagem de outreach.
type TemplateKind string

const (
	TemplateInitial  TemplateKind = "initial"
	TemplateFollowUp TemplateKind = "follow_up"
)

// InboundMessage é uma resposta recebida (reply de email ou SMS).
type InboundMessage struct {
	ID         string    `json:"id"`
	Channel    Channel   `json:"channel"`
	Sender     string    `json:"sender"` // email ou telefone de origem
	Subject    string    `json:"subject,omitempty"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}
