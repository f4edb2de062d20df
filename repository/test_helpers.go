package repository

import (
	"context"

	"taixiu/application"
	"taixiu/database"
	"taixiu/domain/events"
)

// recordingPublisher buffers events like the NATS transactional publisher and keeps
// the flushed ones for assertions in tests
type recordingPublisher struct {
	pending   []events.Event
	published []events.Event
}

func (p *recordingPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

func (p *recordingPublisher) Flush(ctx context.Context) error {
	p.published = append(p.published, p.pending...)
	p.pending = nil
	return nil
}

func (p *recordingPublisher) Discard() {
	p.pending = nil
}

// CreateTestUnitOfWork creates a unit of work for testing with an in-memory transactional publisher
func CreateTestUnitOfWork(db *database.DB) (application.UnitOfWork, *recordingPublisher) {
	publisher := &recordingPublisher{}
	return NewUnitOfWorkFactory(db).CreateWithPublisher(publisher), publisher
}
