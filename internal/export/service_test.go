package export_test

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/khata/internal/codec"
	"github.com/MrJamesThe3rd/khata/internal/export"
	"github.com/MrJamesThe3rd/khata/internal/ledger"
	"github.com/MrJamesThe3rd/khata/internal/ledger/store"
)

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*export.Service, *ledger.Service) {
	t.Helper()

	engine := ledger.NewEngine(ledger.WithClock(func() time.Time { return fixedNow }))
	svc := ledger.NewService(store.NewMemory(), engine)

	_, err := svc.Create(context.Background(), ledger.KindReceivable,
		ledger.EntityParams{Name: "Ravi", Mobile: "9876543210"},
		ledger.LineItemParams{Amount: decimal.NewFromInt(1000), Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), ledger.KindPayable,
		ledger.EntityParams{Name: "Sharma Traders", Mobile: "9000000001"},
		ledger.LineItemParams{Amount: decimal.RequireFromString("2500.50"), Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
	)
	require.NoError(t, err)

	return export.NewService(svc, "INR"), svc
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "customer_data_2024-03-01.json", export.FileName(ledger.KindReceivable, fixedNow))
	assert.Equal(t, "creditor_data_2024-03-01.json", export.FileName(ledger.KindPayable, fixedNow))
}

func TestService_Export(t *testing.T) {
	s, _ := newService(t)

	var buf bytes.Buffer

	name, err := s.Export(context.Background(), ledger.KindReceivable, &buf)
	require.NoError(t, err)
	assert.Equal(t, "customer_data_2024-03-01.json", name)

	c, err := codec.Decode(&buf, ledger.KindReceivable)
	require.NoError(t, err)
	require.Len(t, c.Entities, 1)
	assert.Equal(t, "Ravi", c.Entities[0].Name)
}

func TestService_ExportToDir(t *testing.T) {
	s, _ := newService(t)
	dir := filepath.Join(t.TempDir(), "out")

	path, err := s.ExportToDir(context.Background(), ledger.KindPayable, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "creditor_data_2024-03-01.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"totalOwed": 2500.5`)
}

func TestService_Statement(t *testing.T) {
	s, svc := newService(t)

	c, err := svc.Collection(context.Background(), ledger.KindReceivable)
	require.NoError(t, err)

	body := s.Statement(c)

	assert.Contains(t, body, "Customers (1)")
	assert.Contains(t, body, "* Ravi | 9876543210 | unpaid | 2024-01-15 | ₹1,000.00")
	assert.Contains(t, body, "Total due: ₹1,000.00")
}

func TestService_Archive(t *testing.T) {
	s, _ := newService(t)

	var buf bytes.Buffer

	name, err := s.Archive(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, "khata_export_20240301.zip", name)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}

	assert.Equal(t, []string{
		"customer_data_2024-03-01.json",
		"creditor_data_2024-03-01.json",
		"statement.txt",
	}, names)
}
