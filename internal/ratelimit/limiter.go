package ratelimit

import (
	"sync"
	"time"

	"github.com/alexandrehuynh/client-outreach/internal/entity"
)

// Clock abstrai o tempo para testes determinísticos.
type Clock interface {
	Now() time.Time
}

// SystemClock usa o relógio do sistema.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type window struct {
	count     int
	lastReset time.Time
}

// Limiter controla envios por canal dentro de uma janela deslizante simples.
// Os limites chegam por configuração; o limiter não conhece canais concretos.
// Estado local ao processo: restart zera as cotas (aproximação aceita).
type Limiter struct {
	mu      sync.Mutex
	windows map[entity.Channel]*window
	limits  map[entity.Channel]int
	length  time.Duration
	clock   Clock
}

// NewLimiter cria um limiter com limites por canal (ex: email=50, sms=30)
// e o comprimento da janela (ex: 1h).
func NewLimiter(limits map[entity.Channel]int, length time.Duration, clock Clock) *Limiter {
	if clock == nil {
		clock = SystemClock{}
	}
	copied := make(map[entity.Channel]int, len(limits))
	for ch, limit := range limits {
		copied[ch] = limit
	}
	return &Limiter{
		windows: make(map[entity.Channel]*window),
		limits:  copied,
		length:  length,
		clock:   clock,
	}
}

// Admit decide se mais um envio cabe na janela corrente do canal.
// Negação NÃO é erro: o chamador trata como "tente na próxima janela".
func (l *Limiter) Admit(ch entity.Channel) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()

	w, exists := l.windows[ch]
	if !exists {
		w = &window{lastReset: now}
		l.windows[ch] = w
	}

	if now.Sub(w.lastReset) >= l.length {
		w.count = 0
		w.lastReset = now
	}

	if w.count >= l.limits[ch] {
		return false
	}

	w.count++
	return true
}

// Usage reporta quanto da cota do canal já foi usada na janela corrente.
// Alimenta o relatório de status (sent this hour / rate limit).
func (l *Limiter) Usage(ch entity.Channel) (sent, limit int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	limit = l.limits[ch]

	w, exists := l.windows[ch]
	if !exists {
		return 0, limit
	}
	if l.clock.Now().Sub(w.lastReset) >= l.length {
		return 0, limit
	}
	return w.count, limit
}
