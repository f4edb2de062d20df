package repository

import (
	"context"
	"fmt"
	"time"

	"taixiu/database"
	"taixiu/domain/entities"
	"taixiu/infrastructure/observability"

	"github.com/jackc/pgx/v5"
)

const roundColumns = `id, started_at, closed_at, rolled_at, d1, d2, d3, outcome, house_pot_snapshot, overridden`

// RoundRepository implements the RoundRepository interface
type RoundRepository struct {
	q Queryable
}

// NewRoundRepository creates a new round repository
func NewRoundRepository(db *database.DB) *RoundRepository {
	return &RoundRepository{q: db.Pool}
}

func newRoundRepositoryWithTx(tx Queryable) *RoundRepository {
	return &RoundRepository{q: tx}
}

// GetByID retrieves a round by its ID
func (r *RoundRepository) GetByID(ctx context.Context, id int64) (*entities.Round, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("round", "GetByID")()
	return r.queryOne(ctx, `SELECT `+roundColumns+` FROM rounds WHERE id = $1`, id)
}

// GetOpen returns the round that has not been rolled yet
func (r *RoundRepository) GetOpen(ctx context.Context) (*entities.Round, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("round", "GetOpen")()
	return r.queryOne(ctx, `SELECT `+roundColumns+` FROM rounds WHERE rolled_at IS NULL`)
}

// GetOpenForUpdate returns the open round with an exclusive row lock
func (r *RoundRepository) GetOpenForUpdate(ctx context.Context) (*entities.Round, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("round", "GetOpenForUpdate")()
	return r.queryOne(ctx, `SELECT `+roundColumns+` FROM rounds WHERE rolled_at IS NULL FOR UPDATE`)
}

// GetByIDForShare returns a round with a shared row lock held until commit
func (r *RoundRepository) GetByIDForShare(ctx context.Context, id int64) (*entities.Round, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("round", "GetByIDForShare")()
	return r.queryOne(ctx, `SELECT `+roundColumns+` FROM rounds WHERE id = $1 FOR SHARE`, id)
}

// CreateOpen inserts a new open round. The partial unique index on open rounds
// turns a concurrent second insert into a no-op, in which case the existing round is returned.
func (r *RoundRepository) CreateOpen(ctx context.Context) (*entities.Round, bool, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("round", "CreateOpen")()

	query := `
		INSERT INTO rounds DEFAULT VALUES
		ON CONFLICT DO NOTHING
		RETURNING ` + roundColumns

	round, err := scanRound(r.q.QueryRow(ctx, query))
	if err == nil {
		return round, true, nil
	}
	if err != pgx.ErrNoRows {
		return nil, false, fmt.Errorf("failed to create open round: %w", err)
	}

	existing, err := r.queryOne(ctx, `SELECT `+roundColumns+` FROM rounds WHERE rolled_at IS NULL`)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("open round vanished after insert conflict")
	}
	return existing, false, nil
}

// MarkClosed stops betting on an open round
func (r *RoundRepository) MarkClosed(ctx context.Context, id int64, at time.Time) error {
	defer observability.GetMetrics().MeasureDatabaseQuery("round", "MarkClosed")()

	query := `
		UPDATE rounds
		SET closed_at = $1
		WHERE id = $2 AND closed_at IS NULL AND rolled_at IS NULL
	`

	result, err := r.q.Exec(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to close round %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("round %d is not open", id)
	}
	return nil
}

// SaveRoll commits the dice, outcome, pot snapshot and override flag.
// A rolled round is never written again.
func (r *RoundRepository) SaveRoll(ctx context.Context, round *entities.Round) error {
	defer observability.GetMetrics().MeasureDatabaseQuery("round", "SaveRoll")()

	query := `
		UPDATE rounds
		SET closed_at = $1,
		    rolled_at = $2,
		    d1 = $3, d2 = $4, d3 = $5,
		    outcome = $6,
		    house_pot_snapshot = $7,
		    overridden = $8
		WHERE id = $9 AND rolled_at IS NULL
	`

	result, err := r.q.Exec(ctx, query,
		round.ClosedAt,
		round.RolledAt,
		round.D1, round.D2, round.D3,
		round.Outcome,
		round.HousePotSnapshot,
		round.Overridden,
		round.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save roll for round %d: %w", round.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("round %d already rolled", round.ID)
	}
	return nil
}

// ListRolled returns the most recently rolled rounds, newest first
func (r *RoundRepository) ListRolled(ctx context.Context, limit int) ([]*entities.Round, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("round", "ListRolled")()

	query := `
		SELECT ` + roundColumns + `
		FROM rounds
		WHERE rolled_at IS NOT NULL
		ORDER BY rolled_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rolled rounds: %w", err)
	}
	defer rows.Close()

	var rounds []*entities.Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rounds = append(rounds, round)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rounds: %w", err)
	}
	return rounds, nil
}

func (r *RoundRepository) queryOne(ctx context.Context, query string, args ...any) (*entities.Round, error) {
	round, err := scanRound(r.q.QueryRow(ctx, query, args...))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	return round, nil
}

func scanRound(row pgx.Row) (*entities.Round, error) {
	var round entities.Round
	err := row.Scan(
		&round.ID,
		&round.StartedAt,
		&round.ClosedAt,
		&round.RolledAt,
		&round.D1,
		&round.D2,
		&round.D3,
		&round.Outcome,
		&round.HousePotSnapshot,
		&round.Overridden,
	)
	if err != nil {
		return nil, err
	}
	return &round, nil
}
