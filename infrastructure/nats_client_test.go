package infrastructure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingSubjects(t *testing.T) {
	existing := []string{"round.opened", "round.settled"}

	assert.Empty(t, missingSubjects(existing, []string{"round.settled", "round.opened"}))
	assert.Equal(t, []string{"scheduler.stalled"}, missingSubjects(existing, []string{"round.opened", "scheduler.stalled"}))
	assert.Equal(t, []string{"bet.placed"}, missingSubjects(nil, []string{"bet.placed"}))
}

func TestNATSClient_RequiresConnection(t *testing.T) {
	client := NewNATSClient("nats://localhost:4222")

	assert.False(t, client.IsConnected())
	assert.Error(t, client.EnsureStream(DomainEventStream, []string{"round.opened"}))
	assert.Error(t, client.Publish(context.Background(), "round.opened", []byte("{}")))
	assert.NoError(t, client.Close())
}
