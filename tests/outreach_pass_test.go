package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alexandrehuynh/client-outreach/internal/classify"
	"github.com/alexandrehuynh/client-outreach/internal/entity"
	"github.com/alexandrehuynh/client-outreach/internal/ratelimit"
	"github.com/alexandrehuynh/client-outreach/internal/usecase"
)

var testStart = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func testPassConfig() usecase.PassConfig {
	return usecase.PassConfig{
		FollowUpDelay:   48 * time.Hour,
		SendPacing:      3 * time.Second,
		RetryMax:        3,
		RetryBackoff:    2 * time.Second,
		InboundLookback: 168 * time.Hour,
	}
}

func buildOrchestrator(t *testing.T, store usecase.LeadStore, channels []usecase.MessageChannel, clock usecase.Clock, cfg usecase.PassConfig) *usecase.Orchestrator {
	t.Helper()
	classifier, err := classify.NewDefaultClassifier()
	require.NoError(t, err)

	limits := map[entity.Channel]int{entity.ChannelEmail: 50, entity.ChannelSMS: 30}
	limiter := ratelimit.NewLimiter(limits, time.Hour, clock)

	orch := usecase.NewOrchestrator(store, channels, limiter, classifier, clock, cfg)
	orch.SetSleep(func(time.Duration) {}) // sem pacing real nos testes
	return orch
}

// TestCicloDeVidaCompleto - Teste do funil inteiro de um lead:
// New -> pass inicial -> Contacted -> 2 dias -> follow-up -> Follow-up Sent
// -> resposta "please stop texting me" -> Unsubscribed -> passes seguintes ignoram
func TestCicloDeVidaCompleto(t *testing.T) {
	clock := newFakeClock(testStart)
	store := newMemoryLeadStore(entity.Lead{
		ID:     "lead-1",
		Name:   "Maria",
		Email:  "maria@example.com",
		Phone:  "(555) 123-4567",
		Status: entity.StatusNew,
	})

	email := newMockChannel(entity.ChannelEmail)
	sms := newMockChannel(entity.ChannelSMS)
	orch := buildOrchestrator(t, store, []usecase.MessageChannel{email, sms}, clock, testPassConfig())

	allChannels := []entity.Channel{entity.ChannelEmail, entity.ChannelSMS}

	// 1. Pass inicial: email sai primeiro (lead tem email)
	email.On("Send", mock.Anything, mock.Anything, entity.TemplateInitial).Return(nil).Once()

	summary, err := orch.RunOutreachPass(context.Background(), usecase.PassInitial, allChannels)
	require.NoError(t, err)
	assert.Equal(t, usecase.PassSummary{Sent: 1}, summary)

	lead := store.Get("lead-1")
	assert.Equal(t, entity.StatusContacted, lead.Status)
	require.NotNil(t, lead.DateContacted)
	assert.Equal(t, clock.Now(), *lead.DateContacted)
	assert.Contains(t, lead.Notes, "Email sent at")

	// 2. Repetir o pass inicial não reenvia (lead já saiu de New)
	summary, err = orch.RunOutreachPass(context.Background(), usecase.PassInitial, allChannels)
	require.NoError(t, err)
	assert.Equal(t, usecase.PassSummary{Skipped: 1}, summary)

	// 3. Follow-up antes do prazo: nada acontece
	clock.Advance(24 * time.Hour)
	summary, err = orch.RunOutreachPass(context.Background(), usecase.PassFollowUp, allChannels)
	require.NoError(t, err)
	assert.Equal(t, usecase.PassSummary{Skipped: 1}, summary)

	// 4. Passados 2 dias do contato, o follow-up sai
	clock.Advance(24 * time.Hour)
	email.On("Send", mock.Anything, mock.Anything, entity.TemplateFollowUp).Return(nil).Once()

	summary, err = orch.RunOutreachPass(context.Background(), usecase.PassFollowUp, allChannels)
	require.NoError(t, err)
	assert.Equal(t, usecase.PassSummary{Sent: 1}, summary)

	lead = store.Get("lead-1")
	assert.Equal(t, entity.StatusFollowUpSent, lead.Status)
	require.NotNil(t, lead.FollowUpSent)

	// 5. Lead responde pedindo para parar, via SMS
	email.On("FetchInbound", mock.Anything, mock.Anything).Return([]entity.InboundMessage(nil), nil).Once()
	sms.On("FetchInbound", mock.Anything, mock.Anything).Return([]entity.InboundMessage{
		{
			ID:         "msg-1",
			Channel:    entity.ChannelSMS,
			Sender:     "+15551234567",
			Body:       "please stop texting me",
			ReceivedAt: clock.Now(),
		},
	}, nil).Once()

	respSummary, err := orch.CheckResponses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, usecase.ResponseSummary{Unsubscribed: 1}, respSummary)

	lead = store.Get("lead-1")
	assert.Equal(t, entity.StatusUnsubscribed, lead.Status)
	assert.True(t, lead.HasResponded())
	assert.Contains(t, lead.Notes, "Unsubscribed: via sms")

	// 6. Lead em estado terminal fica fora de qualquer pass futuro
	summary, err = orch.RunOutreachPass(context.Background(), usecase.PassInitial, allChannels)
	require.NoError(t, err)
	assert.Equal(t, usecase.PassSummary{Skipped: 1}, summary)

	email.AssertExpectations(t)
	sms.AssertExpectations(t)
}

// countingLimiter registra chamadas de Admit para verificar o curto-circuito
type countingLimiter struct {
	calls int
	limit int
	sent  int
}

func (c *countingLimiter) Admit(ch entity.Channel) bool {
	c.calls++
	if c.sent >= c.limit {
		return false
	}
	c.sent++
	return true
}

func (c *countingLimiter) Usage(ch entity.Channel) (int, int) {
	return c.sent, c.limit
}

// TestCotaEsgotadaParaDeSondarOCanal - depois da primeira negação o canal
// fica fora do pass, sem consultar o limiter de novo
func TestCotaEsgotadaParaDeSondarOCanal(t *testing.T) {
	clock := newFakeClock(testStart)
	store := newMemoryLeadStore(
		entity.Lead{ID: "1", Email: "a@x.com", Status: entity.StatusNew},
		entity.Lead{ID: "2", Email: "b@x.com", Status: entity.StatusNew},
		entity.Lead{ID: "3", Email: "c@x.com", Status: entity.StatusNew},
		entity.Lead{ID: "4", Email: "d@x.com", Status: entity.StatusNew},
	)

	email := newMockChannel(entity.ChannelEmail)
	email.On("Send", mock.Anything, mock.Anything, entity.TemplateInitial).Return(nil).Times(2)

	classifier, err := classify.NewDefaultClassifier()
	require.NoError(t, err)
	limiter := &countingLimiter{limit: 2}

	orch := usecase.NewOrchestrator(store, []usecase.MessageChannel{email}, limiter, classifier, clock, testPassConfig())
	orch.SetSleep(func(time.Duration) {})

	summary, err := orch.RunOutreachPass(context.Background(), usecase.PassInitial, []entity.Channel{entity.ChannelEmail})
	require.NoError(t, err)

	assert.Equal(t, usecase.PassSummary{Sent: 2, Skipped: 2}, summary)
	assert.Equal(t, 3, limiter.calls, "2 admissões + 1 negação; o 4º lead nem consulta o limiter")
	email.AssertExpectations(t)
}

// TestRetryComBackoffAteSucesso - falha transitória é reabsorvida pelo retry
func TestRetryComBackoffAteSucesso(t *testing.T) {
	clock := newFakeClock(testStart)
	store := newMemoryLeadStore(entity.Lead{ID: "1", Email: "a@x.com", Status: entity.StatusNew})

	email := newMockChannel(entity.ChannelEmail)
	email.On("Send", mock.Anything, mock.Anything, entity.TemplateInitial).Return(errors.New("timeout")).Twice()
	email.On("Send", mock.Anything, mock.Anything, entity.TemplateInitial).Return(nil).Once()

	orch := buildOrchestrator(t, store, []usecase.MessageChannel{email}, clock, testPassConfig())

	var sleeps []time.Duration
	orch.SetSleep(func(d time.Duration) { sleeps = append(sleeps, d) })

	summary, err := orch.RunOutreachPass(context.Background(), usecase.PassInitial, []entity.Channel{entity.ChannelEmail})
	require.NoError(t, err)
	assert.Equal(t, usecase.PassSummary{Sent: 1}, summary)

	// pacing após cada tentativa + backoff crescente entre tentativas
	assert.Equal(t, []time.Duration{
		3 * time.Second, // pacing tentativa 1
		2 * time.Second, // backoff 2s * 1
		3 * time.Second, // pacing tentativa 2
		4 * time.Second, // backoff 2s * 2
		3 * time.Second, // pacing tentativa 3 (sucesso)
	}, sleeps)

	assert.Equal(t, entity.StatusContacted, store.Get("1").Status)
	email.AssertExpectations(t)
}

// TestRetryMaxZeroAindaTentaUmaVez - RETRY_MAX=0 significa "sem retry",
// nunca "marca como contatado sem enviar nada"
func TestRetryMaxZeroAindaTentaUmaVez(t *testing.T) {
	clock := newFakeClock(testStart)
	store := newMemoryLeadStore(entity.Lead{ID: "1", Email: "a@x.com", Status: entity.StatusNew})

	email := newMockChannel(entity.ChannelEmail)
	email.On("Send", mock.Anything, mock.Anything, entity.TemplateInitial).Return(nil).Once()

	cfg := testPassConfig()
	cfg.RetryMax = 0
	orch := buildOrchestrator(t, store, []usecase.MessageChannel{email}, clock, cfg)

	summary, err := orch.RunOutreachPass(context.Background(), usecase.PassInitial, []entity.Channel{entity.ChannelEmail})
	require.NoError(t, err)

	assert.Equal(t, usecase.PassSummary{Sent: 1}, summary)
	email.AssertNumberOfCalls(t, "Send", 1)
	assert.Equal(t, entity.StatusContacted, store.Get("1").Status)

	// e se esse único envio falha, o lead não transiciona
	store2 := newMemoryLeadStore(entity.Lead{ID: "1", Email: "a@x.com", Status: entity.StatusNew})
	email2 := newMockChannel(entity.ChannelEmail)
	email2.On("Send", mock.Anything, mock.Anything, entity.TemplateInitial).Return(errors.New("smtp down")).Once()

	orch2 := buildOrchestrator(t, store2, []usecase.MessageChannel{email2}, clock, cfg)
	summary, err = orch2.RunOutreachPass(context.Background(), usecase.PassInitial, []entity.Channel{entity.ChannelEmail})
	require.NoError(t, err)

	assert.Equal(t, usecase.PassSummary{Failed: 1}, summary)
	assert.Equal(t, entity.StatusNew, store2.Get("1").Status)
	email2.AssertExpectations(t)
}

// TestRetryEsgotadoContaComoFailed
func TestRetryEsgotadoContaComoFailed(t *testing.T) {
	clock := newFakeClock(testStart)
	store := newMemoryLeadStore(entity.Lead{ID: "1", Email: "a@x.com", Status: entity.StatusNew})

	email := newMockChannel(entity.ChannelEmail)
	email.On("Send", mock.Anything, mock.Anything, entity.TemplateInitial).Return(errors.New("smtp down")).Times(3)

	orch := buildOrchestrator(t, store, []usecase.MessageChannel{email}, clock, testPassConfig())

	summary, err := orch.RunOutreachPass(context.Background(), usecase.PassInitial, []entity.Channel{entity.ChannelEmail})
	require.NoError(t, err, "falha de envio não derruba o pass")
	assert.Equal(t, usecase.PassSummary{Failed: 1}, summary)

	assert.Equal(t, entity.StatusNew, store.Get("1").Status, "sem envio, sem transição")
	email.AssertExpectations(t)
}

// TestFalhaDePersistenciaAposEnvio - enviado mas não gravado conta como
// failed e fica logado para reconciliação
func TestFalhaDePersistenciaAposEnvio(t *testing.T) {
	clock := newFakeClock(testStart)

	store := new(MockLeadStore)
	store.On("FetchAll", mock.Anything).Return([]entity.Lead{
		{ID: "1", Email: "a@x.com", Status: entity.StatusNew},
	}, nil)
	store.On("Update", mock.Anything, mock.Anything).Return(errors.New("disco cheio"))

	email := newMockChannel(entity.ChannelEmail)
	email.On("Send", mock.Anything, mock.Anything, entity.TemplateInitial).Return(nil).Once()

	orch := buildOrchestrator(t, store, []usecase.MessageChannel{email}, clock, testPassConfig())

	summary, err := orch.RunOutreachPass(context.Background(), usecase.PassInitial, []entity.Channel{entity.ChannelEmail})
	require.NoError(t, err)
	assert.Equal(t, usecase.PassSummary{Failed: 1}, summary)

	store.AssertExpectations(t)
	email.AssertExpectations(t)
}

// TestFalhaNoSnapshotAbortaOPass - só a leitura inicial é erro fatal
func TestFalhaNoSnapshotAbortaOPass(t *testing.T) {
	clock := newFakeClock(testStart)

	store := new(MockLeadStore)
	store.On("FetchAll", mock.Anything).Return([]entity.Lead(nil), errors.New("conexão recusada"))

	email := newMockChannel(entity.ChannelEmail)
	orch := buildOrchestrator(t, store, []usecase.MessageChannel{email}, clock, testPassConfig())

	summary, err := orch.RunOutreachPass(context.Background(), usecase.PassInitial, []entity.Channel{entity.ChannelEmail})
	assert.Error(t, err)

	var techErr *usecase.TechnicalError
	assert.ErrorAs(t, err, &techErr)
	assert.Equal(t, usecase.CodeSnapshotRead, techErr.Code)
	assert.Equal(t, usecase.PassSummary{}, summary)

	email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

// TestDryRunNaoEnviaNemGrava
func TestDryRunNaoEnviaNemGrava(t *testing.T) {
	clock := newFakeClock(testStart)
	store := newMemoryLeadStore(entity.Lead{ID: "1", Email: "a@x.com", Status: entity.StatusNew})

	email := newMockChannel(entity.ChannelEmail)

	cfg := testPassConfig()
	cfg.DryRun = true
	orch := buildOrchestrator(t, store, []usecase.MessageChannel{email}, clock, cfg)

	summary, err := orch.RunOutreachPass(context.Background(), usecase.PassInitial, []entity.Channel{entity.ChannelEmail})
	require.NoError(t, err)

	assert.Equal(t, usecase.PassSummary{Sent: 1}, summary, "dry-run conta o que TERIA enviado")
	assert.Equal(t, entity.StatusNew, store.Get("1").Status, "estado intacto")
	email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

// TestLeadSemContatoParaOCanal - lead só com telefone não entra no pass de email
func TestLeadSemContatoParaOCanal(t *testing.T) {
	clock := newFakeClock(testStart)
	store := newMemoryLeadStore(entity.Lead{ID: "1", Phone: "5551234567", Status: entity.StatusNew})

	email := newMockChannel(entity.ChannelEmail)
	orch := buildOrchestrator(t, store, []usecase.MessageChannel{email}, clock, testPassConfig())

	summary, err := orch.RunOutreachPass(context.Background(), usecase.PassInitial, []entity.Channel{entity.ChannelEmail})
	require.NoError(t, err)

	assert.Equal(t, usecase.PassSummary{Skipped: 1}, summary)
	email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}
