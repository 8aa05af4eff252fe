package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mertcelik/eduledger/internal/app/models"
)

// EventRepository appends ledger observability records. Events are written in
// the same transaction as the mutation they describe and are never read back
// by the core.
type EventRepository struct {
	db DBTX
}

// NewEventRepository creates a new event repository
func NewEventRepository(db DBTX) *EventRepository {
	return &EventRepository{
		db: db,
	}
}

// Insert appends one event
func (r *EventRepository) Insert(ctx context.Context, event *models.LedgerEvent) error {
	var payload []byte
	if event.Payload != nil {
		var err error
		payload, err = json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("error encoding event payload: %w", err)
		}
	}

	query := `
		INSERT INTO ledger_events (id, kind, learner_id, offering_id, license_id, credential_id, amount, commitment, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		event.ID,
		event.Kind,
		event.LearnerID,
		event.OfferingID,
		event.LicenseID,
		event.CredentialID,
		event.Amount,
		event.Commitment,
		payload,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting ledger event: %w", err)
	}

	return nil
}
