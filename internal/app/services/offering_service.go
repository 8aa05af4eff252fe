package services

import (
	"context"

	"github.com/mertcelik/eduledger/internal/app/models"
	"github.com/mertcelik/eduledger/internal/app/repositories"
)

// OfferingService is the read-only catalog surface
type OfferingService struct {
	store repositories.Store
}

// NewOfferingService creates a new offering service instance
func NewOfferingService(store repositories.Store) *OfferingService {
	return &OfferingService{store: store}
}

// GetAll lists the catalog
func (s *OfferingService) GetAll(ctx context.Context) ([]*models.Offering, error) {
	return s.store.Offerings().GetAll(ctx)
}

// GetByID returns one offering
func (s *OfferingService) GetByID(ctx context.Context, id int64) (*models.Offering, error) {
	return s.store.Offerings().GetByID(ctx, id)
}
