package cards

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mcdev12/cubedraft/go/internal/models"
)

// Schema creates the table the Postgres source reads from.
const Schema = `
CREATE TABLE IF NOT EXISTS cube_cards (
    scryfall_id TEXT PRIMARY KEY,
    position    INTEGER NOT NULL,
    name        TEXT NOT NULL,
    mana_cost   TEXT NOT NULL DEFAULT '',
    type_line   TEXT NOT NULL DEFAULT '',
    rarity      TEXT NOT NULL,
    colors      TEXT[] NOT NULL DEFAULT '{}',
    elo         DOUBLE PRECISION
)`

// DB is the subset of *pgxpool.Pool the source uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres reads the pool from the cube_cards table in list order.
type Postgres struct {
	db DB
}

// NewPostgres creates a source over db.
func NewPostgres(db DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the cube_cards table if needed.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create cube_cards: %w", err)
	}
	return nil
}

func (p *Postgres) Load(ctx context.Context) ([]models.Card, error) {
	rows, err := p.db.Query(ctx, `
        SELECT scryfall_id, name, mana_cost, type_line, rarity, colors, elo
        FROM cube_cards
        ORDER BY position, scryfall_id
    `)
	if err != nil {
		return nil, fmt.Errorf("query cube_cards: %w", err)
	}

	pool, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Card, error) {
		var (
			c      models.Card
			rarity string
		)
		err := row.Scan(&c.ID, &c.Name, &c.ManaCost, &c.Type, &rarity, &c.Colors, &c.Strength)
		c.Rarity = models.Rarity(rarity)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan cube_cards: %w", err)
	}
	if err := Validate(pool); err != nil {
		return nil, fmt.Errorf("cube_cards: %w", err)
	}
	return pool, nil
}

// UpsertResult counts what Upsert did.
type UpsertResult struct {
	Inserted int
	Updated  int
}

// Upsert writes pool into cube_cards, keeping list position. Existing rows
// are refreshed but keep their strength rating when the new entry has none.
func (p *Postgres) Upsert(ctx context.Context, pool []models.Card) (UpsertResult, error) {
	var res UpsertResult
	for i, c := range pool {
		var inserted bool
		err := p.db.QueryRow(ctx, `
            INSERT INTO cube_cards (scryfall_id, position, name, mana_cost, type_line, rarity, colors, elo)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
            ON CONFLICT (scryfall_id) DO UPDATE SET
              position  = EXCLUDED.position,
              name      = EXCLUDED.name,
              mana_cost = EXCLUDED.mana_cost,
              type_line = EXCLUDED.type_line,
              rarity    = EXCLUDED.rarity,
              colors    = EXCLUDED.colors,
              elo       = COALESCE(EXCLUDED.elo, cube_cards.elo)
            RETURNING (xmax = 0)
        `,
			c.ID, i, c.Name, c.ManaCost, c.Type, string(c.Rarity), colorsOrEmpty(c.Colors), c.Strength,
		).Scan(&inserted)
		if err != nil {
			return res, fmt.Errorf("upsert card %s: %w", c.ID, err)
		}
		if inserted {
			res.Inserted++
		} else {
			res.Updated++
		}
	}
	return res, nil
}

func colorsOrEmpty(colors []string) []string {
	if colors == nil {
		return []string{}
	}
	return colors
}
