package numbering

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Allocator combines the proposal policy with a commit-time reserver.
type Allocator struct {
	src      Source
	reserver Reserver
	prefix   string
	log      zerolog.Logger
}

// NewAllocator builds an allocator. An empty prefix selects DefaultPrefix.
func NewAllocator(src Source, reserver Reserver, prefix string, log zerolog.Logger) *Allocator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Allocator{src: src, reserver: reserver, prefix: prefix, log: log}
}

// Prefix returns the identifier prefix.
func (a *Allocator) Prefix() string { return a.prefix }

// Propose returns the identifier to display on a new invoice.
// Lookup failures degrade to the baseline identifier.
func (a *Allocator) Propose(ctx context.Context) string {
	next, err := nextFrom(ctx, a.src, a.prefix)
	if err != nil {
		a.log.Warn().Err(err).Msg("invoice number lookup failed, proposing baseline")
		next = Baseline
	}
	return Format(a.prefix, next)
}

// Reserve claims the next identifier for an invoice being persisted.
// Unlike Propose it fails when the counter cannot be advanced.
func (a *Allocator) Reserve(ctx context.Context) (string, error) {
	seq, err := a.reserver.Reserve(ctx)
	if err != nil {
		return "", fmt.Errorf("reserve invoice number: %w", err)
	}
	a.log.Debug().Int64("sequence", seq).Msg("invoice number reserved")
	return Format(a.prefix, seq), nil
}
