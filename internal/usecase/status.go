package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/alexandrehuynh/client-outreach/internal/entity"
)

// Status monta o retrato do sistema: total de leads, quebra por status,
// follow-ups pendentes e uso de cota por canal.
func (o *Orchestrator) Status(ctx context.Context) (StatusReport, error) {
	snapshot, err := o.store.FetchAll(ctx)
	if err != nil {
		return StatusReport{}, &TechnicalError{
			Code:    CodeSnapshotRead,
			Message: fmt.Sprintf("falha ao ler snapshot de leads: %v", err),
		}
	}

	now := o.clock.Now()

	report := StatusReport{
		Timestamp:    now,
		TotalLeads:   len(snapshot),
		ByStatus:     make(map[entity.Status]int),
		ChannelUsage: make(map[entity.Channel]QuotaUsage),
	}

	for _, lead := range snapshot {
		report.ByStatus[lead.Status]++
	}

	report.FollowUpsPending = len(FilterEligible(snapshot, PassFollowUp, now, o.cfg.FollowUpDelay))

	for _, ch := range o.order {
		sent, limit := o.limiter.Usage(ch)
		report.ChannelUsage[ch] = QuotaUsage{Sent: sent, Limit: limit}
	}

	return report, nil
}

// BackupSnapshot grava um dump JSON do snapshot antes do pass inicial,
// para recuperação manual caso algo corrompa a planilha/tabela.
func (o *Orchestrator) BackupSnapshot(ctx context.Context, dir string) (string, error) {
	snapshot, err := o.store.FetchAll(ctx)
	if err != nil {
		return "", fmt.Errorf("falha ao ler snapshot para backup: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("falha ao criar diretório de backup: %w", err)
	}

	name := filepath.Join(dir, fmt.Sprintf("leads_backup_%s.json", o.clock.Now().Format("20060102_150405")))
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return "", fmt.Errorf("falha ao gravar backup: %w", err)
	}

	log.Printf("💾 Backup criado: %s (%d leads)", name, len(snapshot))
	return name, nil
}

// ConvertLead aplica manual_conversion: sinal externo (endpoint da API),
// nunca sintetizado pela orquestração.
func (o *Orchestrator) ConvertLead(ctx context.Context, leadID string) error {
	snapshot, err := o.store.FetchAll(ctx)
	if err != nil {
		return &TechnicalError{
			Code:    CodeSnapshotRead,
			Message: fmt.Sprintf("falha ao ler snapshot de leads: %v", err),
		}
	}

	for i := range snapshot {
		lead := &snapshot[i]
		if lead.ID != leadID && lead.ContactKey() != leadID {
			continue
		}
		now := o.clock.Now()
		if err := lead.MarkConverted(now); err != nil {
			return &DomainError{Code: "ALREADY_TERMINAL", Message: err.Error()}
		}
		lead.AppendNote(fmt.Sprintf("Converted manually at %s", now.Format("2006-01-02 15:04:05")))
		if err := o.store.Update(ctx, lead); err != nil {
			return fmt.Errorf("falha ao gravar conversão: %w", err)
		}
		log.Printf("🎉 Lead %s convertido", lead.ContactKey())
		return nil
	}

	return &DomainError{Code: CodeLeadNotFound, Message: fmt.Sprintf("lead %s não encontrado", leadID)}
}
