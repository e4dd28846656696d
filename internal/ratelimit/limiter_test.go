package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alexandrehuynh/client-outreach/internal/entity"
)

// fakeClock avança manualmente, sem esperar tempo real
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

// TestAdmitRespectsChannelLimit - com limite 3, de 5 pedidos exatamente 3 passam
func TestAdmitRespectsChannelLimit(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	limiter := NewLimiter(map[entity.Channel]int{entity.ChannelEmail: 3}, time.Hour, clock)

	results := make([]bool, 0, 5)
	for i := 0; i < 5; i++ {
		results = append(results, limiter.Admit(entity.ChannelEmail))
	}

	assert.Equal(t, []bool{true, true, true, false, false}, results,
		"primeiros 3 admitidos, últimos 2 negados, em ordem")
}

// TestWindowResetReadmits - passada a janela, canal negado volta a admitir
func TestWindowResetReadmits(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	limiter := NewLimiter(map[entity.Channel]int{entity.ChannelSMS: 1}, time.Hour, clock)

	assert.True(t, limiter.Admit(entity.ChannelSMS))
	assert.False(t, limiter.Admit(entity.ChannelSMS), "cota esgotada dentro da janela")

	clock.Advance(time.Hour)

	assert.True(t, limiter.Admit(entity.ChannelSMS), "janela nova, cota zerada")
}

// TestChannelsAreIndependent - esgotar um canal não afeta o outro
func TestChannelsAreIndependent(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	limiter := NewLimiter(map[entity.Channel]int{
		entity.ChannelEmail: 1,
		entity.ChannelSMS:   2,
	}, time.Hour, clock)

	assert.True(t, limiter.Admit(entity.ChannelEmail))
	assert.False(t, limiter.Admit(entity.ChannelEmail))

	assert.True(t, limiter.Admit(entity.ChannelSMS))
	assert.True(t, limiter.Admit(entity.ChannelSMS))
	assert.False(t, limiter.Admit(entity.ChannelSMS))
}

// TestUsageReportsCurrentWindow
func TestUsageReportsCurrentWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	limiter := NewLimiter(map[entity.Channel]int{entity.ChannelEmail: 50}, time.Hour, clock)

	sent, limit := limiter.Usage(entity.ChannelEmail)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 50, limit)

	limiter.Admit(entity.ChannelEmail)
	limiter.Admit(entity.ChannelEmail)

	sent, _ = limiter.Usage(entity.ChannelEmail)
	assert.Equal(t, 2, sent)

	// janela expirada zera a leitura
	clock.Advance(2 * time.Hour)
	sent, _ = limiter.Usage(entity.ChannelEmail)
	assert.Equal(t, 0, sent)
}
