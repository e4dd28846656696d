package sheets

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/alexandrehuynh/client-outreach/internal/entity"
	"github.com/alexandrehuynh/client-outreach/internal/infra/integration/msgraph"
)

const timeLayout = "2006-01-02 15:04:05"

// Colunas fixas da worksheet de leads (A..H), mesmo layout da planilha
// operada manualmente: name, email, phone, status, date_contacted,
// response_received, follow_up_sent, notes.
const (
	colName = iota
	colEmail
	colPhone
	colStatus
	colDateContacted
	colResponseReceived
	colFollowUpSent
	colNotes
	columnCount
)

// LeadStore implementa usecase.LeadStore sobre uma planilha Excel no
// OneDrive. O ID do lead é o número da linha, estável durante um pass
// (uma orquestração por vez contra o mesmo store).
type LeadStore struct {
	graph      *msgraph.Client
	owner      string // conta dona do drive onde mora a planilha
	workbookID string
	worksheet  string
}

func NewLeadStore(graph *msgraph.Client, owner, workbookID, worksheet string) *LeadStore {
	return &LeadStore{
		graph:      graph,
		owner:      owner,
		workbookID: workbookID,
		worksheet:  worksheet,
	}
}

// FetchAll lê a área usada da worksheet e converte cada linha (pulando o
// cabeçalho) num Lead, na ordem natural das linhas.
func (s *LeadStore) FetchAll(ctx context.Context) ([]entity.Lead, error) {
	values, err := s.graph.ReadUsedRange(ctx, s.owner, s.workbookID, s.worksheet)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler worksheet: %w", err)
	}

	if len(values) <= 1 {
		return nil, nil
	}

	leads := make([]entity.Lead, 0, len(values)-1)
	for i, row := range values[1:] {
		rowNumber := i + 2 // linha 1 é o cabeçalho

		padded := make([]string, columnCount)
		for j := 0; j < columnCount && j < len(row); j++ {
			padded[j] = cellString(row[j])
		}

		lead := entity.Lead{
			ID:     strconv.Itoa(rowNumber),
			Name:   padded[colName],
			Email:  padded[colEmail],
			Phone:  padded[colPhone],
			Status: entity.Status(padded[colStatus]),
			Notes:  padded[colNotes],
		}
		if lead.Status == "" {
			lead.Status = entity.StatusNew
		}
		lead.DateContacted = parseCellTime(padded[colDateContacted])
		lead.ResponseReceived = parseCellTime(padded[colResponseReceived])
		lead.FollowUpSent = parseCellTime(padded[colFollowUpSent])

		leads = append(leads, lead)
	}

	return leads, nil
}

// Update reescreve a linha inteira do lead num único PATCH de range:
// atômico por lead, nenhuma célula fica pela metade.
func (s *LeadStore) Update(ctx context.Context, lead *entity.Lead) error {
	rowNumber, err := strconv.Atoi(lead.ID)
	if err != nil {
		return fmt.Errorf("id de lead inválido para planilha: %q", lead.ID)
	}

	row := []any{
		lead.Name,
		lead.Email,
		lead.Phone,
		string(lead.Status),
		formatCellTime(lead.DateContacted),
		formatCellTime(lead.ResponseReceived),
		formatCellTime(lead.FollowUpSent),
		lead.Notes,
	}

	address := fmt.Sprintf("A%d:H%d", rowNumber, rowNumber)
	if err := s.graph.PatchRange(ctx, s.owner, s.workbookID, s.worksheet, address, [][]any{row}); err != nil {
		return fmt.Errorf("falha ao atualizar linha %d: %w", rowNumber, err)
	}
	return nil
}

func cellString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

func parseCellTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(timeLayout, s); err == nil {
		return &t
	}
	// células antigas só com a data
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	return nil
}

func formatCellTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}
