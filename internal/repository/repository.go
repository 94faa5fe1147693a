package repository

import (
	"context"
	"time"
)

type CreateBroadcastInput struct {
	ID          string
	Trigger     string
	StartedAt   time.Time
	TargetCount int
}

type CompleteBroadcastInput struct {
	BroadcastID   string
	EndedAt       time.Time
	FinishedCount int
	ErroredCount  int
}

type BroadcastRepository interface {
	CreateBroadcast(ctx context.Context, input CreateBroadcastInput) error
	RecordTarget(ctx context.Context, target BroadcastTarget) error
	CompleteBroadcast(ctx context.Context, input CompleteBroadcastInput) error
	ListRecentBroadcasts(ctx context.Context, limit int) ([]Broadcast, error)
}

type Repository interface {
	BroadcastRepository
}
