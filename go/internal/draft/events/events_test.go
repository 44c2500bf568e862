package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
)

func TestMultiCallsEveryPublisher(t *testing.T) {
	var got []string
	record := func(name string, err error) Publisher {
		return PublisherFunc(func(_ context.Context, e Event) error {
			got = append(got, name+":"+string(e.Type))
			return err
		})
	}

	m := Multi{record("a", nil), nil, record("b", errors.New("boom")), record("c", nil)}
	err := m.Publish(context.Background(), New(uuid.New(), EventTypeCardPicked, time.Now(), nil))

	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"a:CardPicked", "b:CardPicked", "c:CardPicked"}, got)
}

func TestNewAssignsIDs(t *testing.T) {
	draftID := uuid.New()
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	e1 := New(draftID, EventTypeTimerTick, at, TimerTickPayload{TimeRemainingSec: 3})
	e2 := New(draftID, EventTypeTimerTick, at, TimerTickPayload{TimeRemainingSec: 2})

	assert.NotEqual(t, e1.ID, e2.ID)
	assert.Equal(t, draftID, e1.DraftID)
	assert.Equal(t, at, e1.Timestamp)
}

func TestSubjectFor(t *testing.T) {
	draftID := uuid.MustParse("7f1f4a1e-4c55-4c8f-9f55-6d0f5e8c8a11")
	e := New(draftID, EventTypeDraftCompleted, time.Now(), nil)

	assert.Equal(t, "cubedraft.events.7f1f4a1e-4c55-4c8f-9f55-6d0f5e8c8a11.DraftCompleted",
		subjectFor("cubedraft.events", e))
}

func TestIsStreamConfigEqual(t *testing.T) {
	a := jetstream.StreamConfig{Name: "S", MaxAge: time.Hour, Replicas: 1}
	b := a
	assert.True(t, isStreamConfigEqual(a, b))

	b.Replicas = 3
	assert.False(t, isStreamConfigEqual(a, b))
}
