// Package reconcile brings one numeric column of previously seeded listings in
// line with an authoritative export, either by patching a generated SQL
// document or by updating a live store.
package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSourceValues is returned when there is nothing to reconcile against.
var ErrNoSourceValues = errors.New("reconcile: no source values")

// CorrespondenceStrategy maps a target ordinal (normally its identifier) to
// an index into the authoritative value list of length n.
type CorrespondenceStrategy interface {
	Index(ordinal int64, n int) (int, error)
	Name() string
}

// Positional pairs target ordinal k with source row (k-1) mod n. The two
// datasets share no key, so once the shorter list runs out its values are
// reused from the start.
type Positional struct{}

func (Positional) Name() string { return "positional" }

func (Positional) Index(ordinal int64, n int) (int, error) {
	if n <= 0 {
		return 0, ErrNoSourceValues
	}
	i := (ordinal - 1) % int64(n)
	if i < 0 {
		i += int64(n)
	}
	return int(i), nil
}

// StrategyByName resolves a configured strategy; "" means positional.
func StrategyByName(name string) (CorrespondenceStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "positional":
		return Positional{}, nil
	default:
		return nil, fmt.Errorf("reconcile: unknown strategy %q", name)
	}
}

// pick returns the source value for ordinal.
func pick(s CorrespondenceStrategy, ordinal int64, values []int64) (int64, error) {
	i, err := s.Index(ordinal, len(values))
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= len(values) {
		return 0, fmt.Errorf("reconcile: strategy %s returned index %d for %d values", s.Name(), i, len(values))
	}
	return values[i], nil
}
