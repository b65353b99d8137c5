// Package mortality provides the per-age, per-sex annual death probabilities
// (qx) backing the life expectancy estimator. The table is loaded once from
// an embedded SSA 2022 period life table and never mutated, so lookups are
// safe for concurrent readers.
package mortality

import (
	"encoding/json"
	"log/slog"
	"sync"

	_ "embed"
)

// MaxAge is the highest age the table defines. Lookups beyond it reuse the
// terminal-age rate.
const MaxAge = 119

// FallbackRate is the flat annual death probability used when the embedded
// table cannot be parsed. The estimator degrades to a geometric model rather
// than failing.
const FallbackRate = 0.008

// Sex selects which column of the life table applies.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Valid reports whether s names a table column.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

//go:embed data/ssa2022.json
var rawTable []byte

type table struct {
	male   []float64
	female []float64
}

var (
	loadOnce sync.Once
	loaded   *table
)

// Rate returns the annual probability of death for the given age and sex.
// Age is clamped to [0, MaxAge]. Unknown sexes fall back to the male column;
// callers validate sex at the API boundary.
func Rate(age int, sex Sex) float64 {
	loadOnce.Do(load)

	if age < 0 {
		age = 0
	}
	if age > MaxAge {
		age = MaxAge
	}
	if sex == SexFemale {
		return loaded.female[age]
	}
	return loaded.male[age]
}

func load() {
	loaded = parse(rawTable)
}

func parse(raw []byte) *table {
	var parsed struct {
		Male   []float64 `json:"male"`
		Female []float64 `json:"female"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		slog.Warn("mortality table unreadable, using constant fallback", "error", err)
		return fallbackTable()
	}
	if !validColumn(parsed.Male) || !validColumn(parsed.Female) {
		slog.Warn("mortality table malformed, using constant fallback")
		return fallbackTable()
	}
	return &table{male: parsed.Male, female: parsed.Female}
}

func validColumn(qx []float64) bool {
	if len(qx) != MaxAge+1 {
		return false
	}
	for _, q := range qx {
		if q < 0 || q > 1 {
			return false
		}
	}
	return true
}

func fallbackTable() *table {
	flat := make([]float64, MaxAge+1)
	for i := range flat {
		flat[i] = FallbackRate
	}
	return &table{male: flat, female: flat}
}
