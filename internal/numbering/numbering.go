// Package numbering allocates invoice identifiers of the form PREFIX-0001.
//
// Two operations exist. Propose derives the number to display on a new invoice
// form and never fails. Reserve atomically claims a sequence at commit time so
// that concurrent creators can never obtain the same identifier.
package numbering

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultPrefix precedes every invoice number.
	DefaultPrefix = "INV"
	// Width is the minimum number of digits of the sequence.
	Width = 4
	// Baseline is the first sequence of a fresh system.
	Baseline int64 = 1
)

// ErrConflict is returned when a compare-and-increment lost a race.
var ErrConflict = errors.New("numbering: counter changed concurrently")

// Source exposes the data the proposal policy reads.
type Source interface {
	// StoredNext returns the configured next sequence, if any.
	StoredNext(ctx context.Context) (int64, bool, error)
	// HighestNumber returns the highest issued identifier with the given prefix, if any.
	HighestNumber(ctx context.Context, prefix string) (string, bool, error)
}

// Reserver atomically claims the next sequence.
type Reserver interface {
	Reserve(ctx context.Context) (int64, error)
}

// Format renders seq behind prefix, zero-padded to Width digits.
func Format(prefix string, seq int64) string {
	return fmt.Sprintf("%s-%0*d", prefix, Width, seq)
}

// ParseSuffix extracts the numeric sequence of an identifier issued with prefix.
func ParseSuffix(prefix, id string) (int64, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(id), prefix+"-")
	if !ok || len(rest) < Width {
		return 0, false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// nextFrom applies the proposal policy in priority order:
// stored next sequence, then highest issued suffix + 1, then Baseline.
func nextFrom(ctx context.Context, src Source, prefix string) (int64, error) {
	next, ok, err := src.StoredNext(ctx)
	if err != nil {
		return 0, fmt.Errorf("stored next sequence: %w", err)
	}
	if ok && next > 0 {
		return next, nil
	}
	highest, ok, err := src.HighestNumber(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("highest invoice number: %w", err)
	}
	if ok {
		if n, valid := ParseSuffix(prefix, highest); valid {
			return n + 1, nil
		}
	}
	return Baseline, nil
}
