package importer

import (
	"context"
	"io"

	"github.com/MrJamesThe3rd/khata/internal/ledger"
)

// Merger reconciles a decoded collection into the stored one.
type Merger interface {
	Merge(ctx context.Context, incoming ledger.Collection) (ledger.MergeReport, error)
}

// Decoder turns an uploaded file into a collection of the given kind.
type Decoder func(r io.Reader, kind ledger.Kind) (ledger.Collection, error)
