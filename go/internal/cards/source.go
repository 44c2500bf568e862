// Package cards loads the immutable card pool a draft is run over.
package cards

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcdev12/cubedraft/go/internal/models"
)

// ErrEmptyPool is returned when a source holds no cards.
var ErrEmptyPool = errors.New("cards: pool is empty")

// Source provides the card pool.
type Source interface {
	Load(ctx context.Context) ([]models.Card, error)
}

// Validate checks every card and rejects an empty pool.
func Validate(pool []models.Card) error {
	if len(pool) == 0 {
		return ErrEmptyPool
	}
	var errs []error
	for i, c := range pool {
		if err := c.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
