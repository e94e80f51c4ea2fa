package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/khata/internal/codec"
	"github.com/MrJamesThe3rd/khata/internal/ledger"
	"github.com/MrJamesThe3rd/khata/internal/money"
)

// Service writes ledger collections out as files users can keep or re-import.
type Service struct {
	ledger   *ledger.Service
	currency string
}

// NewService creates a new export Service. currency is an ISO 4217 code used
// in statements.
func NewService(l *ledger.Service, currency string) *Service {
	return &Service{ledger: l, currency: currency}
}

// FileName is the dated name of an export of kind taken at t, e.g.
// customer_data_2024-03-01.json.
func FileName(kind ledger.Kind, t time.Time) string {
	prefix := "customer"
	if kind == ledger.KindPayable {
		prefix = "creditor"
	}

	return fmt.Sprintf("%s_data_%s.json", prefix, t.Format(time.DateOnly))
}

// Export writes the collection of kind as JSON to w and returns the file name
// it should be saved under.
func (s *Service) Export(ctx context.Context, kind ledger.Kind, w io.Writer) (string, error) {
	c, err := s.ledger.Collection(ctx, kind)
	if err != nil {
		return "", err
	}

	if err := codec.Encode(w, c); err != nil {
		return "", err
	}

	return FileName(kind, s.ledger.Engine().Now()), nil
}

// ExportToDir writes the export file for kind into dir and returns its path.
func (s *Service) ExportToDir(ctx context.Context, kind ledger.Kind, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, FileName(kind, s.ledger.Engine().Now()))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if _, err := s.Export(ctx, kind, f); err != nil {
		return "", err
	}

	return path, nil
}

// Archive writes a zip holding both collections and a statement of each, and
// returns the archive's file name.
func (s *Service) Archive(ctx context.Context, w io.Writer) (string, error) {
	now := s.ledger.Engine().Now()
	zw := zip.NewWriter(w)

	var statements strings.Builder

	for _, kind := range []ledger.Kind{ledger.KindReceivable, ledger.KindPayable} {
		c, err := s.ledger.Collection(ctx, kind)
		if err != nil {
			return "", err
		}

		f, err := zw.Create(FileName(kind, now))
		if err != nil {
			return "", fmt.Errorf("adding %s to archive: %w", kind, err)
		}

		if err := codec.Encode(f, c); err != nil {
			return "", err
		}

		statements.WriteString(s.Statement(c))
		statements.WriteString("\n")
	}

	f, err := zw.Create("statement.txt")
	if err != nil {
		return "", fmt.Errorf("adding statement to archive: %w", err)
	}

	if _, err := io.WriteString(f, statements.String()); err != nil {
		return "", fmt.Errorf("writing statement: %w", err)
	}

	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("closing archive: %w", err)
	}

	return fmt.Sprintf("khata_export_%s.zip", now.Format("20060102")), nil
}

// Statement renders one line per entity with its outstanding balance, followed
// by the collection total.
func (s *Service) Statement(c ledger.Collection) string {
	var sb strings.Builder

	title, label := "Customers", "Total due"
	if c.Kind == ledger.KindPayable {
		title, label = "Creditors", "Total owed"
	}

	fmt.Fprintf(&sb, "%s (%d)\n", title, len(c.Entities))

	totals := make([]decimal.Decimal, 0, len(c.Entities))

	for _, e := range c.Entities {
		totals = append(totals, e.OutstandingTotal)

		last := "-"
		if !e.LastActivityDate.IsZero() {
			last = e.LastActivityDate.Format(time.DateOnly)
		}

		fmt.Fprintf(&sb, "* %s | %s | %s | %s | %s\n",
			e.Name, e.Mobile, e.Status, last, money.Format(e.OutstandingTotal, s.currency))
	}

	fmt.Fprintf(&sb, "%s: %s\n", label, money.Format(money.Sum(totals...), s.currency))

	return sb.String()
}
