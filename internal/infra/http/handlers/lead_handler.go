package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/alexandrehuynh/client-outreach/internal/entity"
	"github.com/alexandrehuynh/client-outreach/internal/usecase"
)

// LeadUpserter é o pedaço do repositório que a captura usa.
type LeadUpserter interface {
	Upsert(ctx context.Context, lead *entity.Lead) error
}

type LeadHandler struct {
	leadRepo    LeadUpserter
	rateLimiter *IPRateLimiter
}

func NewLeadHandler(leadRepo LeadUpserter) *LeadHandler {
	return &LeadHandler{
		leadRepo:    leadRepo,
		rateLimiter: NewIPRateLimiter(10, time.Minute), // 10 req/min por IP
	}
}

type CaptureLeadRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type CaptureLeadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// CaptureLead insere um lead novo (status New) vindo de formulário externo.
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clientIP := getClientIP(r)
	if !h.rateLimiter.Allow(clientIP) {
		writeCaptureResponse(w, http.StatusTooManyRequests, CaptureLeadResponse{
			Success: false,
			Message: "Too many requests. Please try again later.",
		})
		return
	}

	var req CaptureLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCaptureResponse(w, http.StatusBadRequest, CaptureLeadResponse{
			Success: false,
			Message: "Invalid JSON",
		})
		return
	}

	if errs := usecase.ValidateContact(req.Email, req.Phone); len(errs) > 0 {
		writeCaptureResponse(w, http.StatusBadRequest, CaptureLeadResponse{
			Success: false,
			Message: errs[0].Error(),
		})
		return
	}

	lead := &entity.Lead{
		Email:  req.Email,
		Name:   req.Name,
		Phone:  req.Phone,
		Status: entity.StatusNew,
	}

	if err := h.leadRepo.Upsert(ctx, lead); err != nil {
		writeCaptureResponse(w, http.StatusInternalServerError, CaptureLeadResponse{
			Success: false,
			Message: "Failed to capture lead",
		})
		return
	}

	writeCaptureResponse(w, http.StatusOK, CaptureLeadResponse{Success: true})
}

func writeCaptureResponse(w http.ResponseWriter, status int, resp CaptureLeadResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

// IPRateLimiter protege o endpoint público de captura. Não confundir com o
// limiter de outreach: este é por IP de cliente, aquele é por canal de envio.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewIPRateLimiter(limit int, window time.Duration) *IPRateLimiter {
	rl := &IPRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
	}

	go rl.cleanup()
	return rl
}

func (rl *IPRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := time.Now()

	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

func (rl *IPRateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for ip, v := range rl.visitors {
			if now.Sub(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}
