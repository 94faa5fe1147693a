package repository

import (
	"context"
	"time"

	"github.com/foxseedlab/adhan/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

// Shutdown closes the pool when the injector shuts down.
func (r *PostgresRepository) Shutdown() {
	r.pool.Close()
}

func (r *PostgresRepository) CreateBroadcast(ctx context.Context, input repository.CreateBroadcastInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO broadcasts (id, trigger, started_at, status, target_count)
		 VALUES ($1, $2, $3, 'running', $4)`,
		input.ID, input.Trigger, input.StartedAt, input.TargetCount)
	return err
}

func (r *PostgresRepository) RecordTarget(ctx context.Context, t repository.BroadcastTarget) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO broadcast_targets
		 (broadcast_id, position, guild_id, guild_name, channel_id, channel_name, state, error_message, started_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (broadcast_id, position) DO UPDATE
		 SET state = EXCLUDED.state, error_message = EXCLUDED.error_message, ended_at = EXCLUDED.ended_at`,
		t.BroadcastID, t.Position, t.GuildID, t.GuildName, t.ChannelID, t.ChannelName, t.State, t.ErrorMessage, t.StartedAt, t.EndedAt)
	return err
}

func (r *PostgresRepository) CompleteBroadcast(ctx context.Context, input repository.CompleteBroadcastInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE broadcasts
		 SET status = 'completed', ended_at = $2, finished_count = $3, errored_count = $4
		 WHERE id = $1`,
		input.BroadcastID, input.EndedAt, input.FinishedCount, input.ErroredCount)
	return err
}

func (r *PostgresRepository) ListRecentBroadcasts(ctx context.Context, limit int) ([]repository.Broadcast, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, trigger, started_at, ended_at, status, target_count, finished_count, errored_count
		 FROM broadcasts ORDER BY started_at DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.Broadcast
	for rows.Next() {
		var b repository.Broadcast
		var endedAt *time.Time
		var status string
		if err := rows.Scan(&b.ID, &b.Trigger, &b.StartedAt, &endedAt, &status, &b.TargetCount, &b.FinishedCount, &b.ErroredCount); err != nil {
			return nil, err
		}
		b.EndedAt = endedAt
		b.Status = repository.BroadcastStatus(status)
		list = append(list, b)
	}
	return list, rows.Err()
}
