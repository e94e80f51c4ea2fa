// Package importer merges exported ledger files back into the stored ledger.
package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/khata/internal/codec"
	"github.com/MrJamesThe3rd/khata/internal/ledger"
)

type Service struct {
	ledger Merger
	decode Decoder
}

func NewService(l Merger) *Service {
	return &Service{
		ledger: l,
		decode: codec.Decode,
	}
}

// Import decodes r as a collection of kind and merges it into the stored
// ledger. A malformed file leaves the stored ledger untouched and returns an
// error matching codec.ErrFormat.
func (s *Service) Import(ctx context.Context, kind ledger.Kind, r io.Reader) (ledger.MergeReport, error) {
	incoming, err := s.Decode(kind, r)
	if err != nil {
		return ledger.MergeReport{}, err
	}

	return s.Apply(ctx, incoming)
}

// Decode reads a file without touching the stored ledger, so the caller can
// preview it before calling Apply.
func (s *Service) Decode(kind ledger.Kind, r io.Reader) (ledger.Collection, error) {
	if !kind.Valid() {
		return ledger.Collection{}, &ledger.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown ledger kind %q", kind)}
	}

	incoming, err := s.decode(r, kind)
	if err != nil {
		return ledger.Collection{}, fmt.Errorf("import %s: %w", kind, err)
	}

	return incoming, nil
}

// Apply merges an already decoded collection.
func (s *Service) Apply(ctx context.Context, incoming ledger.Collection) (ledger.MergeReport, error) {
	return s.ledger.Merge(ctx, incoming)
}
