package worker

import (
	"context"
	"log"
	"time"

	"github.com/alexandrehuynh/client-outreach/internal/entity"
	"github.com/alexandrehuynh/client-outreach/internal/usecase"
)

// PassRunner é o que o scheduler precisa do Orchestrator.
type PassRunner interface {
	RunOutreachPass(ctx context.Context, kind usecase.PassKind, channels []entity.Channel) (usecase.PassSummary, error)
	CheckResponses(ctx context.Context) (usecase.ResponseSummary, error)
}

// OutreachScheduler roda os passes em intervalos fixos quando o processo
// sobe como serviço (cmd/api). Substitui o cron da operação manual.
type OutreachScheduler struct {
	runner           PassRunner
	channels         []entity.Channel
	outreachInterval time.Duration
	responseInterval time.Duration
}

func NewOutreachScheduler(runner PassRunner, channels []entity.Channel, outreachInterval, responseInterval time.Duration) *OutreachScheduler {
	return &OutreachScheduler{
		runner:           runner,
		channels:         channels,
		outreachInterval: outreachInterval,
		responseInterval: responseInterval,
	}
}

func (s *OutreachScheduler) Start(ctx context.Context) {
	log.Printf("🕒 Scheduler iniciado (outreach a cada %s, respostas a cada %s)",
		s.outreachInterval, s.responseInterval)

	outreachTicker := time.NewTicker(s.outreachInterval)
	defer outreachTicker.Stop()

	responseTicker := time.NewTicker(s.responseInterval)
	defer responseTicker.Stop()

	// roda uma vez na subida antes de esperar o primeiro tick
	s.runOutreach(ctx)
	s.runResponseCheck(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Scheduler encerrado")
			return
		case <-outreachTicker.C:
			s.runOutreach(ctx)
		case <-responseTicker.C:
			s.runResponseCheck(ctx)
		}
	}
}

// runOutreach roda initial e depois follow-up, sequencialmente: um único
// worker lógico, nunca dois passes ao mesmo tempo.
func (s *OutreachScheduler) runOutreach(ctx context.Context) {
	for _, kind := range []usecase.PassKind{usecase.PassInitial, usecase.PassFollowUp} {
		summary, err := s.runner.RunOutreachPass(ctx, kind, s.channels)
		if err != nil {
			log.Printf("❌ Pass %s falhou: %v", kind, err)
			continue
		}
		log.Printf("📊 Pass %s: sent=%d skipped=%d failed=%d",
			kind, summary.Sent, summary.Skipped, summary.Failed)
	}
}

func (s *OutreachScheduler) runResponseCheck(ctx context.Context) {
	summary, err := s.runner.CheckResponses(ctx)
	if err != nil {
		log.Printf("❌ Check de respostas falhou: %v", err)
		return
	}
	log.Printf("📊 Respostas: unsubscribed=%d interested=%d ignored=%d",
		summary.Unsubscribed, summary.Interested, summary.Ignored)
}
