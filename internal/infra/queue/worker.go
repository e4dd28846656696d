package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/alexandrehuynh/client-outreach/internal/classify"
	"github.com/alexandrehuynh/client-outreach/internal/entity"
)

// InboundProcessor é o contrato que o Orchestrator cumpre para o worker:
// classificar uma resposta e aplicar a transição resultante.
type InboundProcessor interface {
	ProcessInbound(ctx context.Context, msg entity.InboundMessage) (classify.Kind, error)
}

type Worker struct {
	Channel   *amqp.Channel
	Processor InboundProcessor
}

func NewWorker(ch *amqp.Channel, processor InboundProcessor) *Worker {
	return &Worker{
		Channel:   ch,
		Processor: processor,
	}
}

func (w *Worker) Start(ctx context.Context, queueName string) {
	msgs, err := w.Channel.Consume(
		queueName, // fila
		"",        // consumer
		false,     // auto-ack (manual é mais seguro)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		log.Fatalf("❌ Falha ao registrar consumidor RabbitMQ: %s", err)
	}

	log.Printf(" [*] Worker de respostas rodando e aguardando na fila '%s'", queueName)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Worker de respostas encerrado")
			return
		case d, ok := <-msgs:
			if !ok {
				return
			}

			var payload InboundPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [WORKER] JSON inválido: %s", err)
				// Mensagem podre (malformada). Rejeita sem requeue para não travar a fila.
				d.Nack(false, false)
				continue
			}

			log.Printf("📥 [WORKER] Resposta recebida via %s de %s", payload.Channel, payload.Sender)

			kind, err := w.Processor.ProcessInbound(ctx, payload.ToInboundMessage())
			if err != nil {
				// Erro de snapshot/persistência: manda pra DLQ para reprocesso manual
				log.Printf("❌ [WORKER] Erro ao processar resposta: %s", err)
				d.Nack(false, false)
				continue
			}

			log.Printf("✅ [WORKER] Resposta de %s classificada como %s", payload.Sender, kind)
			d.Ack(false)
		}
	}
}
