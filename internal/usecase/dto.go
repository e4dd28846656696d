package usecase

import (
	"time"

	"github.com/alexandrehuynh/client-outreach/internal/entity"
)

// PassKind seleciona o estágio do pass de outbound.
type PassKind string

const (
	PassInitial  PassKind = "initial"
	PassFollowUp PassKind = "follow_up"
)

// TemplateKind traduz o pass para o template correspondente.
func (k PassKind) TemplateKind() entity.TemplateKind {
	if k == PassFollowUp {
		return entity.TemplateFollowUp
	}
	return entity.TemplateInitial
}

// PassSummary é o resultado estruturado de um pass de outbound.
// Falha parcial nunca vira erro do pass: vira contagem.
type PassSummary struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// ResponseSummary é o resultado de um pass de verificação de respostas.
type ResponseSummary struct {
	Unsubscribed int `json:"unsubscribed"`
	Interested   int `json:"interested"`
	Ignored      int `json:"ignored"`
}

// QuotaUsage reporta uso da cota de um canal na janela corrente.
type QuotaUsage struct {
	Sent  int `json:"sent"`
	Limit int `json:"limit"`
}

// StatusReport é o retrato do sistema para o modo status do CLI e o
// endpoint /status da API.
type StatusReport struct {
	Timestamp        time.Time                     `json:"timestamp"`
	TotalLeads       int                           `json:"total_leads"`
	ByStatus         map[entity.Status]int         `json:"status_breakdown"`
	FollowUpsPending int                           `json:"follow_ups_pending"`
	ChannelUsage     map[entity.Channel]QuotaUsage `json:"channel_usage"`
}
