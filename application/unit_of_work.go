package application

import (
	"context"

	"taixiu/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() interfaces.AccountRepository
	HouseRepository() interfaces.HouseRepository
	RoundRepository() interfaces.RoundRepository
	BetRepository() interfaces.BetRepository
	StatsRepository() interfaces.StatsRepository
	ApprovalRequestRepository() interfaces.ApprovalRequestRepository
	BalanceHistoryRepository() interfaces.BalanceHistoryRepository
	SchedulerStateRepository() interfaces.SchedulerStateRepository
	PromoRepository() interfaces.PromoRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
