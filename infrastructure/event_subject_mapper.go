package infrastructure

import (
	"fmt"

	"taixiu/domain/events"
)

var eventSubjects = map[events.EventType]string{
	events.EventTypeBalanceChange:    "ledger.balance_changed",
	events.EventTypeAccountCreated:   "account.created",
	events.EventTypeBetPlaced:        "bet.placed",
	events.EventTypeRoundOpened:      "round.opened",
	events.EventTypeRoundSettled:     "round.settled",
	events.EventTypeApprovalRequest:  "approval.requested",
	events.EventTypeApprovalDecided:  "approval.decided",
	events.EventTypeSchedulerStalled: "scheduler.stalled",
	events.EventTypePromoRedeemed:    "promo.redeemed",
	events.EventTypePromoCompleted:   "promo.wager_completed",
	events.EventTypeOutcomeMode:      "admin.outcome_mode_changed",
}

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := eventSubjects[event.Type()]; ok {
		return subject
	}
	return fmt.Sprintf("unknown.%s", event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range eventSubjects {
		if s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"ledger.balance_changed",
		"account.created",
		"bet.placed",
		"round.opened",
		"round.settled",
		"approval.requested",
		"approval.decided",
		"scheduler.stalled",
		"promo.redeemed",
		"promo.wager_completed",
		"admin.outcome_mode_changed",
	}
}
