package shuffle

import (
	"math/rand"
	"sync"
	"time"

	"github.com/mcdev12/cubedraft/go/internal/models"
)

// Shuffler produces the order in which a session presents the pool.
type Shuffler interface {
	Shuffle(pool []models.Card) []models.Card
}

// FisherYates is an unbiased shuffler backed by its own random source.
type FisherYates struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFisherYates constructs a FisherYates shuffler seeded from the wall clock.
func NewFisherYates() *FisherYates {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded constructs a FisherYates shuffler with a fixed seed.
func NewSeeded(seed int64) *FisherYates {
	return &FisherYates{rng: rand.New(rand.NewSource(seed))}
}

// Shuffle returns a uniformly random permutation of pool. The input is not modified.
func (s *FisherYates) Shuffle(pool []models.Card) []models.Card {
	out := make([]models.Card, len(pool))
	copy(out, pool)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(out) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
