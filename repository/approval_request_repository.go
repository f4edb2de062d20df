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

const approvalRequestColumns = `id, kind, account_id, amount, status, decided_by, decided_at, created_at`

// ApprovalRequestRepository implements the ApprovalRequestRepository interface
type ApprovalRequestRepository struct {
	q Queryable
}

// NewApprovalRequestRepository creates a new approval request repository
func NewApprovalRequestRepository(db *database.DB) *ApprovalRequestRepository {
	return &ApprovalRequestRepository{q: db.Pool}
}

func newApprovalRequestRepositoryWithTx(tx Queryable) *ApprovalRequestRepository {
	return &ApprovalRequestRepository{q: tx}
}

// Create inserts a PENDING request
func (r *ApprovalRequestRepository) Create(ctx context.Context, request *entities.ApprovalRequest) error {
	defer observability.GetMetrics().MeasureDatabaseQuery("approval_request", "Create")()

	query := `
		INSERT INTO approval_requests (kind, account_id, amount, status)
		VALUES ($1, $2, $3, 'PENDING')
		RETURNING id, status, created_at
	`

	err := r.q.QueryRow(ctx, query, request.Kind, request.AccountID, request.Amount).Scan(
		&request.ID,
		&request.Status,
		&request.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create %s request for account %d: %w", request.Kind, request.AccountID, err)
	}
	return nil
}

// GetByID retrieves a request by its ID
func (r *ApprovalRequestRepository) GetByID(ctx context.Context, id int64) (*entities.ApprovalRequest, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("approval_request", "GetByID")()

	return r.queryOne(ctx, `SELECT `+approvalRequestColumns+` FROM approval_requests WHERE id = $1`, id)
}

// FindLatestPending returns the newest PENDING request for the kind, account and amount
func (r *ApprovalRequestRepository) FindLatestPending(ctx context.Context, kind entities.RequestKind, accountID, amount int64) (*entities.ApprovalRequest, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("approval_request", "FindLatestPending")()

	query := `
		SELECT ` + approvalRequestColumns + `
		FROM approval_requests
		WHERE kind = $1 AND account_id = $2 AND amount = $3 AND status = 'PENDING'
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	return r.queryOne(ctx, query, kind, accountID, amount)
}

// Resolve moves a PENDING request to a terminal status. Only one concurrent caller can win.
func (r *ApprovalRequestRepository) Resolve(ctx context.Context, id int64, status entities.RequestStatus, decidedBy int64, at time.Time) (*entities.ApprovalRequest, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("approval_request", "Resolve")()

	query := `
		UPDATE approval_requests
		SET status = $1, decided_by = $2, decided_at = $3
		WHERE id = $4 AND status = 'PENDING'
		RETURNING ` + approvalRequestColumns

	return r.queryOne(ctx, query, status, decidedBy, at, id)
}

// ListPending returns PENDING requests of a kind, oldest first
func (r *ApprovalRequestRepository) ListPending(ctx context.Context, kind entities.RequestKind, limit int) ([]*entities.ApprovalRequest, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("approval_request", "ListPending")()

	query := `
		SELECT ` + approvalRequestColumns + `
		FROM approval_requests
		WHERE kind = $1 AND status = 'PENDING'
		ORDER BY created_at, id
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending %s requests: %w", kind, err)
	}
	defer rows.Close()

	var requests []*entities.ApprovalRequest
	for rows.Next() {
		request, err := scanApprovalRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval request: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate approval requests: %w", err)
	}
	return requests, nil
}

// SumApproved totals the amounts of the account's requests of a kind that were approved
// or confirmed at or after since
func (r *ApprovalRequestRepository) SumApproved(ctx context.Context, kind entities.RequestKind, accountID int64, since time.Time) (int64, error) {
	defer observability.GetMetrics().MeasureDatabaseQuery("approval_request", "SumApproved")()

	query := `
		SELECT COALESCE(SUM(amount), 0)::BIGINT
		FROM approval_requests
		WHERE account_id = $1 AND kind = $2
		  AND status IN ('APPROVED', 'CONFIRMED')
		  AND decided_at >= $3
	`

	var total int64
	if err := r.q.QueryRow(ctx, query, accountID, kind, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum approved %s requests for account %d: %w", kind, accountID, err)
	}
	return total, nil
}

func (r *ApprovalRequestRepository) queryOne(ctx context.Context, query string, args ...any) (*entities.ApprovalRequest, error) {
	request, err := scanApprovalRequest(r.q.QueryRow(ctx, query, args...))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get approval request: %w", err)
	}
	return request, nil
}

func scanApprovalRequest(row pgx.Row) (*entities.ApprovalRequest, error) {
	var request entities.ApprovalRequest
	err := row.Scan(
		&request.ID,
		&request.Kind,
		&request.AccountID,
		&request.Amount,
		&request.Status,
		&request.DecidedBy,
		&request.DecidedAt,
		&request.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &request, nil
}
