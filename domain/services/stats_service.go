package services

import (
	"context"
	"fmt"

	"taixiu/domain/entities"
	"taixiu/domain/interfaces"
	"taixiu/domain/utils"
)

const DefaultLeaderboardLimit = 10

type statsService struct {
	statsRepo interfaces.StatsRepository
}

// NewStatsService creates a new stats service
func NewStatsService(statsRepo interfaces.StatsRepository) interfaces.StatsService {
	return &statsService{statsRepo: statsRepo}
}

// Leaderboard returns accounts ranked by maximum win streak, with obfuscated display IDs
func (s *statsService) Leaderboard(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	entries, err := s.statsRepo.TopByMaxStreak(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	for _, entry := range entries {
		entry.DisplayID = utils.ObfuscateID(entry.AccountID)
	}
	return entries, nil
}
