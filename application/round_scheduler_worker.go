package application

import (
	"context"
	"time"

	"taixiu/config"
	"taixiu/domain/entities"

	log "github.com/sirupsen/logrus"
)

// RoundSettler settles the open round when it is due
type RoundSettler interface {
	SettleDue(ctx context.Context, now time.Time) (*entities.SettlementSummary, error)
}

// RoundSchedulerWorker drives rounds on a fixed cadence.
// A failed tick leaves the round open and is retried on the next tick.
type RoundSchedulerWorker struct {
	settler RoundSettler
	tick    time.Duration
	now     func() time.Time
}

// NewRoundSchedulerWorker creates a new round scheduler worker
func NewRoundSchedulerWorker(settler RoundSettler) *RoundSchedulerWorker {
	return &RoundSchedulerWorker{
		settler: settler,
		tick:    config.Get().SchedulerTick,
		now:     time.Now,
	}
}

// Start begins the scheduler loop. The returned function stops it and waits for the loop to exit.
func (w *RoundSchedulerWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		log.WithField("tick", w.tick).Info("Round scheduler worker started")

		ticker := time.NewTicker(w.tick)
		defer ticker.Stop()

		for {
			w.RunOnce(ctx)

			select {
			case <-ctx.Done():
				log.Info("Round scheduler worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Round scheduler worker shutting down (stop requested)...")
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		close(stopChan)
		<-done
	}
}

// RunOnce performs a single scheduler tick
func (w *RoundSchedulerWorker) RunOnce(ctx context.Context) *entities.SettlementSummary {
	summary, err := w.settler.SettleDue(ctx, w.now())
	if err != nil {
		log.WithError(err).Error("Failed to settle due round")
		return nil
	}
	if summary == nil {
		return nil
	}

	fields := log.Fields{
		"roundID":     summary.RoundID,
		"dice":        summary.Dice.String(),
		"outcome":     summary.Outcome,
		"winners":     len(summary.Winners),
		"losers":      summary.LoserCount,
		"houseGain":   summary.HouseGain,
		"nextRoundID": summary.NextRoundID,
	}
	if summary.Jackpot != nil && summary.Jackpot.Distributed {
		fields["jackpotShare"] = summary.Jackpot.Share
	}
	log.WithFields(fields).Info("Round settled")
	return summary
}
