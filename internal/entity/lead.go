package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status do lead dentro do funil de outreach.
type Status string

const (
	StatusNew          Status = "New"
	StatusContacted    Status = "Contacted"
	StatusFollowUpSent Status = "Follow-up Sent"
	StatusResponded    Status = "Responded"
	StatusConverted    Status = "Converted"
	StatusUnsubscribed Status = "Unsubscribed"
)

var (
	ErrLeadTerminal       = errors.New("lead está em status terminal")
	ErrInvalidTransition  = errors.New("transição de status inválida")
	ErrLeadSemContato     = errors.New("lead sem email e sem telefone")
	ErrFollowUpSemContato = errors.New("follow-up exige contato inicial prévio")
)

// Entidade: Lead
// Criado externamente na planilha/banco, mutado apenas pelo Orchestrator.
// Nunca deletado: estados terminais ficam retidos para auditoria.
type Lead struct {
	ID               string     `json:"id"`
	Name             string     `json:"name,omitempty"`
	Email            string     `json:"email,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	Status           Status     `json:"status"`
	DateContacted    *time.Time `json:"date_contacted,omitempty"`
	ResponseReceived *time.Time `json:"response_received,omitempty"`
	FollowUpSent     *time.Time `json:"follow_up_sent,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (l *Lead) Validate() error {
	if l.Email == "" && l.Phone == "" {
		return ErrLeadSemContato
	}
	return nil
}

// ContactKey é a identidade do lead: email quando existe, senão telefone.
func (l *Lead) ContactKey() string {
	if l.Email != "" {
		return l.Email
	}
	return l.Phone
}

// IsTerminal: nenhuma transição sai de Unsubscribed ou Converted.
func (l *Lead) IsTerminal() bool {
	return l.Status == StatusUnsubscribed || l.Status == StatusConverted
}

// HasResponded: response_received é timestamp nullable; presença = true.
func (l *Lead) HasResponded() bool {
	return l.ResponseReceived != nil
}

// MarkContacted aplica initial_send_succeeded: New -> Contacted.
func (l *Lead) MarkContacted(now time.Time) error {
	if l.IsTerminal() {
		return ErrLeadTerminal
	}
	if l.Status != StatusNew {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.Status, StatusContacted)
	}
	l.Status = StatusContacted
	l.DateContacted = &now
	l.UpdatedAt = now
	return nil
}

// MarkFollowUpSent aplica follow_up_due_and_sent: Contacted -> Follow-up Sent.
func (l *Lead) MarkFollowUpSent(now time.Time) error {
	if l.IsTerminal() {
		return ErrLeadTerminal
	}
	if l.Status != StatusContacted {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.Status, StatusFollowUpSent)
	}
	if l.DateContacted == nil {
		return ErrFollowUpSemContato
	}
	l.Status = StatusFollowUpSent
	l.FollowUpSent = &now
	l.UpdatedAt = now
	return nil
}

// MarkResponded aplica inbound_classified_interested: qualquer não-terminal -> Responded.
func (l *Lead) MarkResponded(now time.Time) error {
	if l.IsTerminal() {
		return ErrLeadTerminal
	}
	l.Status = StatusResponded
	l.ResponseReceived = &now
	l.UpdatedAt = now
	return nil
}

// MarkUnsubscribed aplica inbound_classified_unsubscribe.
// Permanente: sobrevive a restart porque o status vive no LeadStore.
func (l *Lead) MarkUnsubscribed(now time.Time) error {
	if l.IsTerminal() {
		return ErrLeadTerminal
	}
	l.Status = StatusUnsubscribed
	l.ResponseReceived = &now
	l.UpdatedAt = now
	return nil
}

// MarkConverted aplica manual_conversion (sinal externo, nunca sintetizado aqui).
func (l *Lead) MarkConverted(now time.Time) error {
	if l.IsTerminal() {
		return ErrLeadTerminal
	}
	l.Status = StatusConverted
	l.UpdatedAt = now
	return nil
}

// AppendNote acumula trilha de auditoria em texto livre (coluna notes).
func (l *Lead) AppendNote(note string) {
	if l.Notes == "" {
		l.Notes = note
		return
	}
	l.Notes = strings.TrimRight(l.Notes, "; ") + "; " + note
}
