package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"taixiu/domain/events"
	"taixiu/infrastructure/observability"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// sourceService identifies this process in event envelopes
const sourceService = "taixiu-engine"

// EventEnvelope wraps every published event with routing metadata
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// MessagePublisher is the transport the event publisher writes encoded envelopes to.
// A nil MessagePublisher keeps events in-process.
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

var _ MessagePublisher = (*NATSClient)(nil)

// LocalEventHandler handles an event inside the publishing process
type LocalEventHandler func(context.Context, events.Event) error

// NATSEventPublisher implements the EventPublisher interface using NATS
type NATSEventPublisher struct {
	messagePublisher MessagePublisher
	subjectMapper    *EventSubjectMapper
	localHandlers    map[events.EventType][]LocalEventHandler
	mu               sync.RWMutex
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(messagePublisher MessagePublisher, subjectMapper *EventSubjectMapper) *NATSEventPublisher {
	return &NATSEventPublisher{
		messagePublisher: messagePublisher,
		subjectMapper:    subjectMapper,
		localHandlers:    make(map[events.EventType][]LocalEventHandler),
	}
}

// Publish runs local handlers for the event and then publishes it to its NATS subject
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx := context.Background()
	eventType := event.Type()

	p.mu.RLock()
	handlers := p.localHandlers[eventType]
	p.mu.RUnlock()

	for _, handler := range handlers {
		// Local handler errors never block other handlers or the NATS publish
		if err := handler(ctx, event); err != nil {
			log.WithFields(log.Fields{
				"eventType": eventType,
				"error":     err,
			}).Error("Local event handler failed")
		}
	}

	if p.messagePublisher == nil {
		return nil
	}

	subject := p.subjectMapper.MapEventToSubject(event)
	envelopeData, envelope, err := NewEnvelope(event)
	if err != nil {
		return err
	}

	if err := p.messagePublisher.Publish(ctx, subject, envelopeData); err != nil {
		// No stream is bound to the subject, the event is simply not persisted
		if strings.Contains(err.Error(), "no response from stream") {
			return nil
		}
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	observability.GetMetrics().RecordNATSMessagePublished(string(eventType))
	log.WithFields(log.Fields{
		"eventType": eventType,
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")

	return nil
}

// RegisterLocalHandler registers a handler that will be invoked locally for events
func (p *NATSEventPublisher) RegisterLocalHandler(eventType events.EventType, handler LocalEventHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.localHandlers[eventType] = append(p.localHandlers[eventType], handler)
	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(p.localHandlers[eventType]),
	}).Info("Registered local event handler")
}

// NewEnvelope serializes an event inside a freshly identified envelope
func NewEnvelope(event events.Event) ([]byte, *EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: sourceService,
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal event envelope: %w", err)
	}
	return data, envelope, nil
}
