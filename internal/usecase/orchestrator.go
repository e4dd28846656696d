package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/alexandrehuynh/client-outreach/internal/entity"
	"github.com/alexandrehuynh/client-outreach/internal/infra/http/middleware"
)

// PassConfig são os knobs de orquestração. Vêm da configuração externa,
// nunca de constantes internas.
type PassConfig struct {
	FollowUpDelay   time.Duration
	SendPacing      time.Duration
	RetryMax        int
	RetryBackoff    time.Duration
	InboundLookback time.Duration
	DryRun          bool
}

// Orchestrator é o coração do sistema: decide o que fazer com cada lead,
// consulta o RateLimiter antes de cada envio, despacha pelos adapters de
// canal e persiste cada transição no LeadStore antes de seguir adiante.
// Um pass roda sequencialmente, do início ao fim, num único worker lógico.
type Orchestrator struct {
	store      LeadStore
	channels   map[entity.Channel]MessageChannel
	order      []entity.Channel
	limiter    RateLimiter
	classifier ResponseClassifier
	clock      Clock
	cfg        PassConfig

	// sleep é injetável para os testes não esperarem pacing real
	sleep func(time.Duration)
}

func NewOrchestrator(
	store LeadStore,
	channels []MessageChannel,
	limiter RateLimiter,
	classifier ResponseClassifier,
	clock Clock,
	cfg PassConfig,
) *Orchestrator {
	if clock == nil {
		clock = SystemClock{}
	}
	// RETRY_MAX conta tentativas, não re-tentativas: 0 ainda é um envio
	if cfg.RetryMax < 1 {
		cfg.RetryMax = 1
	}
	byChannel := make(map[entity.Channel]MessageChannel, len(channels))
	order := make([]entity.Channel, 0, len(channels))
	for _, ch := range channels {
		byChannel[ch.Channel()] = ch
		order = append(order, ch.Channel())
	}
	return &Orchestrator{
		store:      store,
		channels:   byChannel,
		order:      order,
		limiter:    limiter,
		classifier: classifier,
		clock:      clock,
		cfg:        cfg,
		sleep:      time.Sleep,
	}
}

// SetSleep troca a função de pausa (usado apenas em teste).
func (o *Orchestrator) SetSleep(fn func(time.Duration)) {
	o.sleep = fn
}

// EligibleForPass é o filtro puro de elegibilidade: depende só do snapshot
// do lead e do relógio, nunca de estado mutável da orquestração. Rodar duas
// vezes sobre o mesmo snapshot dá o mesmo resultado.
func EligibleForPass(lead entity.Lead, kind PassKind, now time.Time, followUpDelay time.Duration) bool {
	if lead.IsTerminal() {
		return false
	}
	switch kind {
	case PassInitial:
		return lead.Status == entity.StatusNew
	case PassFollowUp:
		return lead.Status == entity.StatusContacted &&
			lead.DateContacted != nil &&
			now.Sub(*lead.DateContacted) >= followUpDelay &&
			!lead.HasResponded()
	}
	return false
}

// FilterEligible aplica EligibleForPass preservando a ordem do snapshot.
func FilterEligible(snapshot []entity.Lead, kind PassKind, now time.Time, followUpDelay time.Duration) []entity.Lead {
	eligible := make([]entity.Lead, 0, len(snapshot))
	for _, lead := range snapshot {
		if EligibleForPass(lead, kind, now, followUpDelay) {
			eligible = append(eligible, lead)
		}
	}
	return eligible
}

// RunOutreachPass roda um pass de outbound (initial ou follow-up) sobre os
// canais pedidos. Só a leitura do snapshot é fatal; todo o resto vira
// contagem no summary (isolamento de falha parcial).
func (o *Orchestrator) RunOutreachPass(ctx context.Context, kind PassKind, channels []entity.Channel) (PassSummary, error) {
	var summary PassSummary

	// Snapshot único e consistente no início do pass
	snapshot, err := o.store.FetchAll(ctx)
	if err != nil {
		return summary, &TechnicalError{
			Code:    CodeSnapshotRead,
			Message: fmt.Sprintf("falha ao ler snapshot de leads: %v", err),
		}
	}

	now := o.clock.Now()
	log.Printf("📋 Pass %s iniciado: %d leads no snapshot, canais %v", kind, len(snapshot), channels)

	// Cota esgotada num canal = canal fora pelo resto do pass (não fica sondando)
	exhausted := make(map[entity.Channel]bool)

	for i := range snapshot {
		lead := snapshot[i]

		if !EligibleForPass(lead, kind, now, o.cfg.FollowUpDelay) {
			summary.Skipped++
			continue
		}

		dispatched := false
		persisted := false
		failed := false

		for _, ch := range channels {
			if exhausted[ch] {
				continue
			}
			adapter, ok := o.channels[ch]
			if !ok || !hasContactFor(lead, ch) {
				continue
			}

			if !o.limiter.Admit(ch) {
				exhausted[ch] = true
				middleware.RecordRateLimitDenial(string(ch))
				log.Printf("⏸️ Cota de %s esgotada na janela atual; canal pausado até o próximo pass", ch)
				continue
			}

			if o.cfg.DryRun {
				log.Printf("🔍 [DRY-RUN] Enviaria %s via %s para %s", kind, ch, lead.ContactKey())
				dispatched = true
				persisted = true
				break
			}

			if err := o.dispatchWithRetry(ctx, adapter, lead, kind.TemplateKind()); err != nil {
				log.Printf("❌ Envio %s via %s para %s falhou após %d tentativas: %v",
					kind, ch, lead.ContactKey(), o.cfg.RetryMax, err)
				failed = true
				continue // tenta o próximo canal pedido
			}

			dispatched = true
			middleware.RecordMessageSent(string(ch), string(kind.TemplateKind()))

			// Persistir a transição ANTES de passar ao próximo lead. Crash
			// entre envio e gravação é risco at-least-once assumido.
			if err := o.persistSendTransition(ctx, &lead, kind, ch); err != nil {
				log.Printf("🚨 RECONCILIAÇÃO NECESSÁRIA: %s enviado para %s via %s mas o estado NÃO foi gravado: %v",
					kind, lead.ContactKey(), ch, err)
				failed = true
			} else {
				persisted = true
				log.Printf("✅ %s enviado via %s para %s (%s)", kind, ch, lead.Name, lead.ContactKey())
			}
			break // mensagem saiu; não dispara de novo em outro canal
		}

		switch {
		case dispatched && persisted:
			summary.Sent++
		case failed:
			summary.Failed++
		default:
			// sem canal disponível (cota esgotada ou sem contato): não é erro
			summary.Skipped++
		}
	}

	log.Printf("🏁 Pass %s concluído: sent=%d skipped=%d failed=%d", kind, summary.Sent, summary.Skipped, summary.Failed)
	return summary, nil
}

// dispatchWithRetry tenta entregar com retry limitado + backoff. A pausa de
// pacing se aplica após TODA tentativa, sucesso ou falha, antes de avaliar
// o próximo lead.
func (o *Orchestrator) dispatchWithRetry(ctx context.Context, adapter MessageChannel, lead entity.Lead, kind entity.TemplateKind) error {
	var lastErr error
	for attempt := 1; attempt <= o.cfg.RetryMax; attempt++ {
		err := adapter.Send(ctx, lead, kind)
		o.sleep(o.cfg.SendPacing)
		if err == nil {
			return nil
		}
		lastErr = err
		middleware.RecordDispatchFailure(string(adapter.Channel()))
		if attempt < o.cfg.RetryMax {
			log.Printf("♻️ Tentativa %d/%d falhou para %s via %s: %v",
				attempt, o.cfg.RetryMax, lead.ContactKey(), adapter.Channel(), err)
			o.sleep(o.cfg.RetryBackoff * time.Duration(attempt))
		}
	}
	return lastErr
}

func (o *Orchestrator) persistSendTransition(ctx context.Context, lead *entity.Lead, kind PassKind, ch entity.Channel) error {
	now := o.clock.Now()
	stamp := now.Format("2006-01-02 15:04:05")

	switch kind {
	case PassFollowUp:
		if err := lead.MarkFollowUpSent(now); err != nil {
			return err
		}
		lead.AppendNote(fmt.Sprintf("Follow-up %s sent at %s", channelLabel(ch), stamp))
	default:
		if err := lead.MarkContacted(now); err != nil {
			return err
		}
		lead.AppendNote(fmt.Sprintf("%s sent at %s", channelLabel(ch), stamp))
	}

	return o.store.Update(ctx, lead)
}

func hasContactFor(lead entity.Lead, ch entity.Channel) bool {
	switch ch {
	case entity.ChannelEmail:
		return lead.Email != ""
	case entity.ChannelSMS:
		return lead.Phone != ""
	}
	return false
}

func channelLabel(ch entity.Channel) string {
	if ch == entity.ChannelSMS {
		return "SMS"
	}
	return "Email"
}
