package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/alexandrehuynh/client-outreach/internal/infra/queue"
)

// WebhookHandler recebe respostas entregues por push (Twilio para SMS,
// qualquer forwarder para email) e publica na fila de inbound. A
// classificação acontece no worker, fora do ciclo do request.
type WebhookHandler struct {
	Producer queue.ProducerInterface
}

func NewWebhookHandler(producer queue.ProducerInterface) *WebhookHandler {
	return &WebhookHandler{Producer: producer}
}

// HandleSMS recebe o webhook de mensagem da Twilio (form-urlencoded).
func (h *WebhookHandler) HandleSMS(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad form", http.StatusBadRequest)
		return
	}

	from := r.PostFormValue("From")
	body := r.PostFormValue("Body")
	sid := r.PostFormValue("MessageSid")
	if from == "" || body == "" {
		http.Error(w, "Missing From/Body", http.StatusBadRequest)
		return
	}
	if sid == "" {
		sid = uuid.New().String()
	}

	payload := queue.InboundPayload{
		ID:         sid,
		Channel:    "sms",
		Sender:     from,
		Body:       body,
		ReceivedAt: time.Now(),
	}

	if err := h.Producer.PublishInbound(r.Context(), payload); err != nil {
		log.Printf("❌ Erro fila: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// Twilio espera TwiML; resposta vazia = sem auto-reply
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Response></Response>`))
}

// HandleEmail recebe respostas de email encaminhadas por um forwarder JSON.
func (h *WebhookHandler) HandleEmail(w http.ResponseWriter, r *http.Request) {
	var event struct {
		Sender  string `json:"sender"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}

	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Bad JSON", http.StatusBadRequest)
		return
	}
	if event.Sender == "" || event.Body == "" {
		http.Error(w, "Missing sender/body", http.StatusBadRequest)
		return
	}

	payload := queue.InboundPayload{
		ID:         uuid.New().String(),
		Channel:    "email",
		Sender:     event.Sender,
		Subject:    event.Subject,
		Body:       event.Body,
		ReceivedAt: time.Now(),
	}

	if err := h.Producer.PublishInbound(r.Context(), payload); err != nil {
		log.Printf("❌ Erro fila: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
