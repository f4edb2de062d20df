package services

import (
	"context"
	"fmt"
	"time"

	"taixiu/config"
	"taixiu/domain/entities"
	"taixiu/domain/events"
	"taixiu/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

type roundService struct {
	roundRepo      interfaces.RoundRepository
	eventPublisher interfaces.EventPublisher
	config         *config.Config
}

// NewRoundService creates a new round service
func NewRoundService(roundRepo interfaces.RoundRepository, eventPublisher interfaces.EventPublisher) interfaces.RoundService {
	return &roundService{
		roundRepo:      roundRepo,
		eventPublisher: eventPublisher,
		config:         config.Get(),
	}
}

// EnsureOpenRound returns the open round, creating one if none exists
func (s *roundService) EnsureOpenRound(ctx context.Context) (*entities.Round, error) {
	round, err := s.roundRepo.GetOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get open round: %w", err)
	}
	if round != nil {
		return round, nil
	}
	round, _, err = openRound(ctx, s.roundRepo, s.eventPublisher)
	return round, err
}

// History returns the most recently rolled rounds, newest first
func (s *roundService) History(ctx context.Context, limit int) ([]*entities.Round, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	rounds, err := s.roundRepo.ListRolled(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return rounds, nil
}

// IsDue reports whether the round has been open for the configured interval
func (s *roundService) IsDue(round *entities.Round, now time.Time) bool {
	return round != nil && round.IsDue(now, s.config.RoundInterval)
}

// openRound inserts an open round, or returns the one a concurrent caller created first
func openRound(ctx context.Context, roundRepo interfaces.RoundRepository, eventPublisher interfaces.EventPublisher) (*entities.Round, bool, error) {
	round, created, err := roundRepo.CreateOpen(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open round: %w", err)
	}

	if created {
		if err := eventPublisher.Publish(events.RoundOpenedEvent{
			RoundID:   round.ID,
			StartedAt: round.StartedAt,
		}); err != nil {
			log.WithError(err).WithField("roundID", round.ID).Error("failed to publish round opened event")
		}
		log.WithField("roundID", round.ID).Info("round opened")
	}

	return round, created, nil
}
