package entities

// Stats tracks per-account win streaks and totals
type Stats struct {
	AccountID    int64 `db:"account_id"`
	WinStreak    int   `db:"win_streak"`
	MaxWinStreak int   `db:"max_win_streak"`
	TotalWins    int   `db:"total_wins"`
	TotalLosses  int   `db:"total_losses"`
}

// RecordWin extends the streak and raises the maximum when it is exceeded
func (s *Stats) RecordWin() {
	s.WinStreak++
	s.TotalWins++
	if s.WinStreak > s.MaxWinStreak {
		s.MaxWinStreak = s.WinStreak
	}
}

// RecordLoss resets the streak
func (s *Stats) RecordLoss() {
	s.WinStreak = 0
	s.TotalLosses++
}

// LeaderboardEntry is one row of the max-streak ranking
type LeaderboardEntry struct {
	AccountID    int64  `db:"account_id"`
	DisplayID    string // Obfuscated account ID for public announcements
	MaxWinStreak int    `db:"max_win_streak"`
}
