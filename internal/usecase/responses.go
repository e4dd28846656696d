package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/alexandrehuynh/client-outreach/internal/classify"
	"github.com/alexandrehuynh/client-outreach/internal/entity"
	"github.com/alexandrehuynh/client-outreach/internal/infra/http/middleware"
)

// CheckResponses varre as respostas recentes de todos os canais, classifica
// cada uma e aplica a transição resultante. Mensagem sem lead correspondente
// é ignorada (logada, não é erro).
func (o *Orchestrator) CheckResponses(ctx context.Context) (ResponseSummary, error) {
	var summary ResponseSummary

	snapshot, err := o.store.FetchAll(ctx)
	if err != nil {
		return summary, &TechnicalError{
			Code:    CodeSnapshotRead,
			Message: fmt.Sprintf("falha ao ler snapshot de leads: %v", err),
		}
	}

	since := o.clock.Now().Add(-o.cfg.InboundLookback)

	for _, ch := range o.order {
		adapter := o.channels[ch]
		messages, err := adapter.FetchInbound(ctx, since)
		if err != nil {
			log.Printf("⚠️ Falha ao buscar respostas de %s: %v", ch, err)
			continue
		}
		log.Printf("📥 %d resposta(s) recebidas via %s", len(messages), ch)

		for _, msg := range messages {
			kind := o.applyInbound(ctx, snapshot, msg)
			switch kind {
			case classify.KindUnsubscribe:
				summary.Unsubscribed++
			case classify.KindInterested:
				summary.Interested++
			default:
				summary.Ignored++
			}
		}
	}

	log.Printf("🏁 Respostas processadas: unsubscribed=%d interested=%d ignored=%d",
		summary.Unsubscribed, summary.Interested, summary.Ignored)
	return summary, nil
}

// ProcessInbound trata UMA mensagem recebida (caminho do webhook/fila).
// Busca o snapshot na hora porque a mensagem chega fora de um pass.
func (o *Orchestrator) ProcessInbound(ctx context.Context, msg entity.InboundMessage) (classify.Kind, error) {
	snapshot, err := o.store.FetchAll(ctx)
	if err != nil {
		return classify.KindNeutral, &TechnicalError{
			Code:    CodeSnapshotRead,
			Message: fmt.Sprintf("falha ao ler snapshot de leads: %v", err),
		}
	}
	return o.applyInbound(ctx, snapshot, msg), nil
}

// applyInbound classifica e aplica a transição de uma mensagem. Retorna o
// kind que de fato produziu efeito; tudo que não transiciona vira neutral.
func (o *Orchestrator) applyInbound(ctx context.Context, snapshot []entity.Lead, msg entity.InboundMessage) classify.Kind {
	kind := o.classifier.Classify(msg.Body)
	middleware.RecordResponseClassified(string(kind))

	if kind == classify.KindNeutral {
		return classify.KindNeutral
	}

	lead := matchLead(snapshot, msg.Sender)
	if lead == nil {
		// remetente desconhecido: ignora, severidade baixa
		log.Printf("🤷 Resposta de remetente sem lead correspondente (%s via %s), ignorando", msg.Sender, msg.Channel)
		return classify.KindNeutral
	}

	if lead.IsTerminal() {
		// Unsubscribed/Converted nunca mudam de novo
		return classify.KindNeutral
	}

	now := o.clock.Now()
	stamp := now.Format("2006-01-02 15:04:05")

	if o.cfg.DryRun {
		log.Printf("🔍 [DRY-RUN] Classificaria resposta de %s como %s", lead.ContactKey(), kind)
		return kind
	}

	var err error
	switch kind {
	case classify.KindUnsubscribe:
		err = lead.MarkUnsubscribed(now)
		lead.AppendNote(fmt.Sprintf("Unsubscribed: via %s at %s", msg.Channel, stamp))
	case classify.KindInterested:
		err = lead.MarkResponded(now)
		lead.AppendNote(fmt.Sprintf("Interested reply via %s at %s", msg.Channel, stamp))
	}
	if err != nil {
		log.Printf("⚠️ Transição %s rejeitada para %s: %v", kind, lead.ContactKey(), err)
		return classify.KindNeutral
	}

	if err := o.store.Update(ctx, lead); err != nil {
		log.Printf("🚨 Falha ao gravar transição %s do lead %s: %v", kind, lead.ContactKey(), err)
		return classify.KindNeutral
	}

	log.Printf("✅ Lead %s marcado como %s", lead.ContactKey(), lead.Status)
	return kind
}

// matchLead resolve o remetente para um lead do snapshot: email com
// comparação case-insensitive, telefone por sufixo de dígitos (o provider
// pode mandar com ou sem código do país).
func matchLead(snapshot []entity.Lead, sender string) *entity.Lead {
	senderDigits := digitsOnly(sender)
	for i := range snapshot {
		lead := &snapshot[i]
		if lead.Email != "" && strings.EqualFold(lead.Email, strings.TrimSpace(sender)) {
			return lead
		}
		if lead.Phone != "" && senderDigits != "" && phoneMatch(digitsOnly(lead.Phone), senderDigits) {
			return lead
		}
	}
	return nil
}

func phoneMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	return strings.HasSuffix(b, a)
}

func digitsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
