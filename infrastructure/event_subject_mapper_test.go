package infrastructure

import (
	"testing"

	"taixiu/domain/events"

	"github.com/stretchr/testify/assert"
)

type unknownEvent struct{}

func (unknownEvent) Type() events.EventType { return "mystery" }

func TestEventSubjectMapper_RoundTrip(t *testing.T) {
	mapper := NewEventSubjectMapper()

	tests := []struct {
		event   events.Event
		subject string
	}{
		{events.BalanceChangeEvent{}, "ledger.balance_changed"},
		{events.AccountCreatedEvent{}, "account.created"},
		{events.BetPlacedEvent{}, "bet.placed"},
		{events.RoundOpenedEvent{}, "round.opened"},
		{events.RoundSettledEvent{}, "round.settled"},
		{events.ApprovalRequestedEvent{}, "approval.requested"},
		{events.ApprovalDecidedEvent{}, "approval.decided"},
		{events.SchedulerStalledEvent{}, "scheduler.stalled"},
		{events.PromoRedeemedEvent{}, "promo.redeemed"},
		{events.PromoWagerCompletedEvent{}, "promo.wager_completed"},
		{events.OutcomeModeChangedEvent{}, "admin.outcome_mode_changed"},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.subject, mapper.MapEventToSubject(tt.event))
			assert.Equal(t, tt.event.Type(), mapper.MapSubjectToEventType(tt.subject))
			assert.Contains(t, mapper.GetAllSubjects(), tt.subject)
		})
	}

	assert.Len(t, mapper.GetAllSubjects(), len(tests))
}

func TestEventSubjectMapper_UnknownEvent(t *testing.T) {
	mapper := NewEventSubjectMapper()

	assert.Equal(t, "unknown.mystery", mapper.MapEventToSubject(unknownEvent{}))
	assert.Equal(t, events.EventType("some.subject"), mapper.MapSubjectToEventType("some.subject"))
}
