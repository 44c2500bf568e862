// Command seed_cards builds the cube pool file from a cube list, one card
// name per line after a header line. Each name is looked up on Scryfall;
// entries already in the pool are kept, and entries missing colors are
// refreshed.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/cubedraft/go/internal/cards"
	"github.com/mcdev12/cubedraft/go/internal/dbconfig"
	"github.com/mcdev12/cubedraft/go/internal/models"
	"github.com/mcdev12/cubedraft/go/internal/scryfall"
)

type cardFetcher interface {
	CardNamed(ctx context.Context, name string) (*scryfall.Card, error)
}

type importer struct {
	fetcher   cardFetcher
	poolPath  string
	saveEvery int
	out       io.Writer
}

type importResult struct {
	Pool    []models.Card
	Added   int
	Updated int
	Failed  []string
}

func main() {
	var (
		listPath   string
		poolPath   string
		failedPath string
		maxCards   int
		saveEvery  int
		upsert     bool
	)
	flag.StringVar(&listPath, "list", "ThePeasantCube2025.txt", "cube list, one card name per line after a header")
	flag.StringVar(&poolPath, "pool", "peasant_cube.json", "pool file to create or extend")
	flag.StringVar(&failedPath, "failed", "failed_cards.txt", "where to write names that could not be imported")
	flag.IntVar(&maxCards, "max", 540, "number of list entries to read (0 = all)")
	flag.IntVar(&saveEvery, "save-every", 25, "save progress after this many lookups")
	flag.BoolVar(&upsert, "postgres", false, "also upsert the pool into the cube_cards table (DB_* env)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1) Read the cube list and whatever pool already exists
	names, err := readCubeList(listPath, maxCards)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read cube list: %v\n", err)
		os.Exit(1)
	}
	existing, err := cards.ReadFile(poolPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "read pool: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("No existing pool found, starting fresh")
	}

	// 2) Fetch what is missing
	im := &importer{
		fetcher:   scryfall.NewClient(),
		poolPath:  poolPath,
		saveEvery: saveEvery,
		out:       os.Stdout,
	}
	res, err := im.run(ctx, existing, names)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Done: %d cards in pool, %d added, %d updated, %d failed\n",
		len(res.Pool), res.Added, res.Updated, len(res.Failed))

	if len(res.Failed) > 0 {
		if err := writeFailed(failedPath, res.Failed); err != nil {
			fmt.Fprintf(os.Stderr, "write failed cards: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Failed cards saved to %s for manual review\n", failedPath)
	}

	// 3) Optionally mirror the pool into Postgres
	if !upsert {
		return
	}
	if err := upsertPool(ctx, res.Pool); err != nil {
		fmt.Fprintf(os.Stderr, "upsert: %v\n", err)
		os.Exit(1)
	}
}

// readCubeList returns the card names of a cube list. The first line is a
// header; blank lines are dropped. max bounds the number of lines read
// after the header.
func readCubeList(path string, max int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if line == 1 {
			continue
		}
		if max > 0 && line > max+1 {
			break
		}
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			names = append(names, name)
		}
	}
	return names, scanner.Err()
}

// plan splits the list into names not yet in the pool and pool entries
// that need refreshing because their colors were never recorded.
func plan(existing []models.Card, names []string) (add, update []string) {
	known := make(map[string]bool, len(existing))
	for _, c := range existing {
		known[c.Name] = true
	}
	for _, name := range names {
		if !known[name] {
			add = append(add, name)
			known[name] = true
		}
	}
	for _, c := range existing {
		if c.Colors == nil && slices.Contains(names, c.Name) {
			update = append(update, c.Name)
		}
	}
	return add, update
}

func (im *importer) run(ctx context.Context, existing []models.Card, names []string) (importResult, error) {
	add, update := plan(existing, names)
	res := importResult{Pool: append([]models.Card(nil), existing...)}
	todo := append(append([]string(nil), add...), update...)

	fmt.Fprintf(im.out, "%d cards in list, %d to add, %d to refresh\n", len(names), len(add), len(update))

	for i, name := range todo {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		fmt.Fprintf(im.out, "[%d/%d] %s\n", i+1, len(todo), name)

		card, err := im.fetch(ctx, name)
		switch {
		case err != nil:
			fmt.Fprintf(im.out, "  failed: %v\n", err)
			res.Failed = append(res.Failed, name)
		case i < len(add):
			res.Pool = append(res.Pool, card)
			res.Added++
		default:
			refresh(res.Pool, card)
			res.Updated++
		}

		if im.saveEvery > 0 && (i+1)%im.saveEvery == 0 {
			if err := cards.WriteFile(im.poolPath, res.Pool); err != nil {
				return res, err
			}
			fmt.Fprintf(im.out, "Progress saved: %d cards, %d remaining\n", len(res.Pool), len(todo)-i-1)
		}
	}

	if err := cards.WriteFile(im.poolPath, res.Pool); err != nil {
		return res, err
	}
	return res, nil
}

func (im *importer) fetch(ctx context.Context, name string) (models.Card, error) {
	sc, err := im.fetcher.CardNamed(ctx, name)
	if err != nil {
		return models.Card{}, err
	}
	card := sc.ToModel(name)
	if err := card.Validate(); err != nil {
		return models.Card{}, err
	}
	return card, nil
}

// refresh overwrites the Scryfall fields of the pool entry with the same
// name, keeping its strength rating.
func refresh(pool []models.Card, card models.Card) {
	for i := range pool {
		if pool[i].Name != card.Name {
			continue
		}
		card.Strength = pool[i].Strength
		pool[i] = card
		return
	}
}

func writeFailed(path string, names []string) error {
	return os.WriteFile(path, []byte(strings.Join(names, "\n")+"\n"), 0o644)
}

func upsertPool(ctx context.Context, pool []models.Card) error {
	cfg := dbconfig.NewConfigFromEnv()
	pgPool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer pgPool.Close()

	store := cards.NewPostgres(pgPool)
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	res, err := store.Upsert(ctx, pool)
	if err != nil {
		return err
	}
	fmt.Printf("Upserted %d cards into %s: %d inserted, %d updated\n",
		len(pool), cfg, res.Inserted, res.Updated)
	return nil
}
