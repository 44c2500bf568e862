package orchestrator

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/cubedraft/go/internal/draft/session"
	"github.com/mcdev12/cubedraft/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTicker struct {
	ticks   chan struct{}
	outcome session.Outcome
}

func (f *fakeTicker) Tick(context.Context) session.Outcome {
	f.ticks <- struct{}{}
	return f.outcome
}

type inOrder struct{}

func (inOrder) Shuffle(pool []models.Card) []models.Card {
	return append([]models.Card(nil), pool...)
}

func startRun(t *testing.T, o *Orchestrator) (context.CancelFunc, chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.Run(ctx) }()
	return cancel, done
}

func TestRun_TicksOncePerPeriod(t *testing.T) {
	clock := clockwork.NewFakeClock()
	engine := &fakeTicker{ticks: make(chan struct{}, 10), outcome: session.OutcomeApplied}
	o := NewOrchestrator(engine, WithClock(clock), WithPeriod(time.Second))

	cancel, done := startRun(t, o)
	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		select {
		case <-engine.ticks:
		case <-ctx.Done():
			t.Fatalf("tick %d not delivered", i)
		}
	}

	clock.Advance(500 * time.Millisecond)
	select {
	case <-engine.ticks:
		t.Fatal("ticked before a full period elapsed")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}

func TestRun_StopsWhenEngineClosed(t *testing.T) {
	clock := clockwork.NewFakeClock()
	engine := &fakeTicker{ticks: make(chan struct{}, 1), outcome: session.OutcomeRejectedClosed}
	o := NewOrchestrator(engine, WithClock(clock))

	cancel, done := startRun(t, o)
	defer cancel()
	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	clock.Advance(DefaultPeriod)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("orchestrator kept running after engine closed")
	}
}

func TestRun_ForcesPickOnExpiry(t *testing.T) {
	pool := make([]models.Card, 10)
	for i := range pool {
		pool[i] = models.Card{ID: fmt.Sprintf("card-%d", i), Name: fmt.Sprintf("Card %d", i)}
	}
	engine, err := session.New(context.Background(), pool,
		models.DraftSettings{TimerSeconds: 2, TotalPicks: 5, InitialSkips: 1},
		session.WithShuffler(inOrder{}))
	require.NoError(t, err)
	defer engine.Close()

	clock := clockwork.NewFakeClock()
	o := NewOrchestrator(engine, WithClock(clock))
	cancel, done := startRun(t, o)
	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return engine.TimeRemaining() == 1 }, time.Second, 5*time.Millisecond)
	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return len(engine.State().PickedCards) == 1 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, "card-0", engine.State().PickedCards[0].ID)
	assert.Equal(t, 2, engine.TimeRemaining())

	cancel()
	require.NoError(t, <-done)
}
