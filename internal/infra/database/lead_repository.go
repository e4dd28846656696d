package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/alexandrehuynh/client-outreach/internal/entity"
)

// LeadRepository implementa usecase.LeadStore sobre Postgres.
type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

// FetchAll devolve o snapshot completo em ordem estável (ordem natural de
// criação), que é a ordem de processamento dos passes.
func (r *LeadRepository) FetchAll(ctx context.Context) ([]entity.Lead, error) {
	query := `
		SELECT id, name, email, phone, status,
		       date_contacted, response_received, follow_up_sent,
		       notes, created_at, updated_at
		FROM leads
		ORDER BY created_at, id
	`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar leads: %w", err)
	}
	defer rows.Close()

	var leads []entity.Lead
	for rows.Next() {
		var (
			lead         entity.Lead
			name, email  sql.NullString
			phone, notes sql.NullString
			status       string
			contacted    sql.NullTime
			responded    sql.NullTime
			followedUp   sql.NullTime
		)

		if err := rows.Scan(
			&lead.ID, &name, &email, &phone, &status,
			&contacted, &responded, &followedUp,
			&notes, &lead.CreatedAt, &lead.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("falha ao escanear lead: %w", err)
		}

		lead.Name = name.String
		lead.Email = email.String
		lead.Phone = phone.String
		lead.Notes = notes.String
		lead.Status = entity.Status(status)
		if contacted.Valid {
			t := contacted.Time
			lead.DateContacted = &t
		}
		if responded.Valid {
			t := responded.Time
			lead.ResponseReceived = &t
		}
		if followedUp.Valid {
			t := followedUp.Time
			lead.FollowUpSent = &t
		}

		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

// Update grava todos os campos mutáveis num único UPDATE: atômico por lead,
// nenhuma escrita parcial fica visível.
func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads
		SET status = $2,
		    date_contacted = $3,
		    response_received = $4,
		    follow_up_sent = $5,
		    notes = $6,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		string(lead.Status),
		lead.DateContacted,
		lead.ResponseReceived,
		lead.FollowUpSent,
		nullString(lead.Notes),
	)
	if err != nil {
		return fmt.Errorf("falha ao atualizar lead %s: %w", lead.ID, err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("lead %s não existe no banco", lead.ID)
	}

	return nil
}

// Upsert insere um lead novo (status New) ou atualiza nome/telefone de um
// existente com o mesmo email. Usado pelo endpoint de captura da API.
func (r *LeadRepository) Upsert(ctx context.Context, lead *entity.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.Status == "" {
		lead.Status = entity.StatusNew
	}

	query := `
		INSERT INTO leads (id, name, email, phone, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (email)
		DO UPDATE SET
			name = COALESCE(EXCLUDED.name, leads.name),
			phone = COALESCE(EXCLUDED.phone, leads.phone),
			updated_at = NOW()
		RETURNING id, status, created_at, updated_at
	`

	var status string
	err := r.DB.QueryRowContext(
		ctx,
		query,
		lead.ID,
		nullString(lead.Name),
		nullString(lead.Email),
		nullString(lead.Phone),
		string(lead.Status),
	).Scan(
		&lead.ID,
		&status,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	lead.Status = entity.Status(status)

	return err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
