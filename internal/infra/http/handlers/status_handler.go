package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alexandrehuynh/client-outreach/internal/usecase"
)

// StatusProvider é o que o handler precisa do Orchestrator.
type StatusProvider interface {
	Status(ctx context.Context) (usecase.StatusReport, error)
}

// LeadConverter aplica o sinal externo de conversão manual.
type LeadConverter interface {
	ConvertLead(ctx context.Context, leadID string) error
}

type StatusHandler struct {
	Provider StatusProvider
}

func NewStatusHandler(provider StatusProvider) *StatusHandler {
	return &StatusHandler{Provider: provider}
}

func (h *StatusHandler) Handle(w http.ResponseWriter, r *http.Request) {
	report, err := h.Provider.Status(r.Context())
	if err != nil {
		log.Printf("❌ Erro ao montar status: %v", err)
		http.Error(w, "Failed to build status report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

type ConversionHandler struct {
	Converter LeadConverter
}

func NewConversionHandler(converter LeadConverter) *ConversionHandler {
	return &ConversionHandler{Converter: converter}
}

// Handle marca um lead como Converted. POST /leads/{leadId}/convert
func (h *ConversionHandler) Handle(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadId")
	if leadID == "" {
		http.Error(w, "Missing lead id", http.StatusBadRequest)
		return
	}

	if err := h.Converter.ConvertLead(r.Context(), leadID); err != nil {
		var dErr *usecase.DomainError
		if errors.As(err, &dErr) {
			status := http.StatusConflict
			if dErr.Code == usecase.CodeLeadNotFound {
				status = http.StatusNotFound
			}
			http.Error(w, dErr.Message, status)
			return
		}
		log.Printf("❌ Erro ao converter lead %s: %v", leadID, err)
		http.Error(w, "Failed to convert lead", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
