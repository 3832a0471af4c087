package fallback

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"hindsight/internal/domain"

	"gopkg.in/yaml.v3"
)

// DefaultPrice is used for symbols missing from the reference table.
const DefaultPrice = 100.0

//go:embed reference_prices.yaml
var embeddedReferencePrices []byte

// ReferenceTable holds the placeholder prices used when real market data is
// unavailable. It is built once and only read afterwards, so it is safe for
// concurrent use without locking.
type ReferenceTable struct {
	current map[string]float64
	history map[string]map[int]map[int]float64
	popular []domain.Coin
}

type referenceFile struct {
	Current map[string]float64                 `yaml:"current"`
	History map[string]map[int]map[int]float64 `yaml:"history"`
	Popular []domain.Coin                      `yaml:"popular"`
}

// LoadReferenceTable reads the table from path, or from the embedded default
// when path is empty.
func LoadReferenceTable(path string) (*ReferenceTable, error) {
	if strings.TrimSpace(path) == "" {
		return ParseReferenceTable(embeddedReferencePrices)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference prices: %w", err)
	}
	return ParseReferenceTable(data)
}

// DefaultReferenceTable returns the embedded table. It panics only if the
// embedded document is broken.
func DefaultReferenceTable() *ReferenceTable {
	t, err := ParseReferenceTable(embeddedReferencePrices)
	if err != nil {
		panic(fmt.Sprintf("embedded reference prices: %v", err))
	}
	return t
}

func ParseReferenceTable(data []byte) (*ReferenceTable, error) {
	var raw referenceFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse reference prices: %w", err)
	}

	t := &ReferenceTable{
		current: make(map[string]float64, len(raw.Current)),
		history: make(map[string]map[int]map[int]float64, len(raw.History)),
	}
	for sym, price := range raw.Current {
		if price <= 0 {
			return nil, fmt.Errorf("reference price for %s must be positive", sym)
		}
		t.current[domain.BaseSymbol(sym)] = price
	}
	for sym, years := range raw.History {
		if len(years) == 0 {
			return nil, fmt.Errorf("history for %s has no years", sym)
		}
		for y, months := range years {
			if len(months) == 0 {
				return nil, fmt.Errorf("history for %s %d has no months", sym, y)
			}
			for m, price := range months {
				if m < 1 || m > 12 {
					return nil, fmt.Errorf("history for %s %d has invalid month %d", sym, y, m)
				}
				if price <= 0 {
					return nil, fmt.Errorf("history for %s %d-%02d must be positive", sym, y, m)
				}
			}
		}
		t.history[domain.BaseSymbol(sym)] = years
	}
	for _, c := range raw.Popular {
		if c.Image == "" {
			c.Image = domain.CoinImageURL(c.Symbol)
		}
		t.popular = append(t.popular, c)
	}
	return t, nil
}

// CurrentPrice returns the scalar reference price for symbol.
func (t *ReferenceTable) CurrentPrice(symbol string) (float64, bool) {
	p, ok := t.current[domain.BaseSymbol(symbol)]
	return p, ok
}

// History returns the year→month→price table for symbol.
func (t *ReferenceTable) History(symbol string) (map[int]map[int]float64, bool) {
	h, ok := t.history[domain.BaseSymbol(symbol)]
	return h, ok
}

// Symbols lists the symbols with a current reference price, sorted.
func (t *ReferenceTable) Symbols() []string {
	out := make([]string, 0, len(t.current))
	for sym := range t.current {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Popular returns a copy of the hardcoded popular-coins list.
func (t *ReferenceTable) Popular() []domain.Coin {
	return append([]domain.Coin(nil), t.popular...)
}

func latestYear(years map[int]map[int]float64) int {
	latest := 0
	first := true
	for y := range years {
		if first || y > latest {
			latest = y
			first = false
		}
	}
	return latest
}

func firstMonth(months map[int]float64) float64 {
	best := 13
	for m := range months {
		if m < best {
			best = m
		}
	}
	return months[best]
}

func monthPrice(months map[int]float64, month int) float64 {
	if p, ok := months[month]; ok {
		return p
	}
	return firstMonth(months)
}
