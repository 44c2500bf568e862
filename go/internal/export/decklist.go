// Package export turns a finished draft into something printable: a text
// decklist or the layout of a proxy sheet.
package export

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mcdev12/cubedraft/go/internal/models"
)

// ErrDraftIncomplete is returned when exporting a draft that is still running.
var ErrDraftIncomplete = errors.New("export: draft is not complete")

// Format selects what an export produces.
type Format string

const (
	FormatArena     Format = "arena"     // "2 Card Name"
	FormatPlainText Format = "plaintext" // "2x Card Name"
	FormatProxy     Format = "proxy"     // proxy sheet layout
)

// ParseFormat resolves a query value. "decklist" and "" mean arena.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "decklist", string(FormatArena):
		return FormatArena, nil
	case string(FormatPlainText):
		return FormatPlainText, nil
	case string(FormatProxy):
		return FormatProxy, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// DeckEntry is one distinct card in a decklist.
type DeckEntry struct {
	Name     string
	Quantity int
}

// Entries groups cards by name, sorted by name.
func Entries(cards []models.Card) []DeckEntry {
	counts := make(map[string]int)
	for _, c := range cards {
		counts[c.Name]++
	}

	entries := make([]DeckEntry, 0, len(counts))
	for name, n := range counts {
		entries = append(entries, DeckEntry{Name: name, Quantity: n})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// Decklist renders cards in a text format, headed by a Deck section for
// the Arena format.
func Decklist(cards []models.Card, format Format) (string, error) {
	var sb strings.Builder
	switch format {
	case FormatArena:
		sb.WriteString("Deck\n")
		for _, e := range Entries(cards) {
			fmt.Fprintf(&sb, "%d %s\n", e.Quantity, e.Name)
		}
	case FormatPlainText:
		for _, e := range Entries(cards) {
			fmt.Fprintf(&sb, "%dx %s\n", e.Quantity, e.Name)
		}
	default:
		return "", fmt.Errorf("format %q is not a decklist format", format)
	}
	return sb.String(), nil
}
