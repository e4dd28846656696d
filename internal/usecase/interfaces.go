package usecase

import (
	"context"
	"time"

	"github.com/alexandrehuynh/client-outreach/internal/classify"
	"github.com/alexandrehuynh/client-outreach/internal/entity"
)

// LeadStore é o colaborador externo que guarda os leads (Postgres ou
// planilha Excel). Update precisa ser atômico por lead: nenhuma escrita
// parcial de campos fica visível.
type LeadStore interface {
	FetchAll(ctx context.Context) ([]entity.Lead, error)
	Update(ctx context.Context, lead *entity.Lead) error
}

// MessageChannel é o adapter de um canal de envio (email ou SMS).
// Send entrega uma mensagem do template indicado; FetchInbound lista
// respostas recebidas desde o instante informado (paginação/cursor é
// responsabilidade do provider, não do Orchestrator).
type MessageChannel interface {
	Channel() entity.Channel
	Send(ctx context.Context, lead entity.Lead, kind entity.TemplateKind) error
	FetchInbound(ctx context.Context, since time.Time) ([]entity.InboundMessage, error)
}

// RateLimiter controla a admissão de envios por canal. Negação não é erro.
type RateLimiter interface {
	Admit(ch entity.Channel) bool
	Usage(ch entity.Channel) (sent, limit int)
}

// ResponseClassifier decide o que fazer com uma resposta recebida.
type ResponseClassifier interface {
	Classify(body string) classify.Kind
}

// Clock abstrai o tempo para testes determinísticos.
type Clock interface {
	Now() time.Time
}

// SystemClock usa o relógio do sistema.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
