package repository

import (
	"context"

	"github.com/foxseedlab/adhan/internal/repository"
)

// NoopRepository is used when no database is configured.
type NoopRepository struct{}

func NewNoopRepository() repository.Repository {
	return NoopRepository{}
}

func (NoopRepository) CreateBroadcast(context.Context, repository.CreateBroadcastInput) error {
	return nil
}

func (NoopRepository) RecordTarget(context.Context, repository.BroadcastTarget) error {
	return nil
}

func (NoopRepository) CompleteBroadcast(context.Context, repository.CompleteBroadcastInput) error {
	return nil
}

func (NoopRepository) ListRecentBroadcasts(context.Context, int) ([]repository.Broadcast, error) {
	return nil, nil
}
