package cloud_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/khata/internal/cloud"
	"github.com/MrJamesThe3rd/khata/internal/codec"
	"github.com/MrJamesThe3rd/khata/internal/ledger"
	"github.com/MrJamesThe3rd/khata/internal/ledger/store"
)

func newLedger(t *testing.T, name, mobile string) *ledger.Service {
	t.Helper()

	svc := ledger.NewService(store.NewMemory(), nil)

	_, err := svc.Create(context.Background(), ledger.KindReceivable,
		ledger.EntityParams{Name: name, Mobile: mobile},
		ledger.LineItemParams{Amount: decimal.NewFromInt(500), Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	)
	require.NoError(t, err)

	return svc
}

func TestService_RequiresConnection(t *testing.T) {
	s := cloud.NewService(newLedger(t, "Ravi", "1"), cloud.NewMemoryDrive())

	_, err := s.Backup(context.Background())
	assert.ErrorIs(t, err, cloud.ErrNotConnected)

	_, err = s.Restore(context.Background())
	assert.ErrorIs(t, err, cloud.ErrNotConnected)
}

func TestService_RestoreWithoutBackup(t *testing.T) {
	s := cloud.NewService(newLedger(t, "Ravi", "1"), cloud.NewMemoryDrive())
	s.Connect("me@example.com")

	_, err := s.Restore(context.Background())
	assert.ErrorIs(t, err, cloud.ErrNoBackup)
}

func TestService_BackupAndRestore(t *testing.T) {
	ctx := context.Background()
	drive := cloud.NewMemoryDrive()

	phone := cloud.NewService(newLedger(t, "Ravi", "111"), drive)
	status := phone.Connect("me@example.com")
	assert.True(t, status.Connected)
	assert.Nil(t, status.LastBackup)

	m, err := phone.Backup(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, 1, m.Customers)
	assert.Equal(t, 0, m.Creditors)

	status = phone.Status()
	require.NotNil(t, status.LastBackup)
	assert.Equal(t, m.CreatedAt, *status.LastBackup)

	laptopLedger := newLedger(t, "Meena", "222")
	laptop := cloud.NewService(laptopLedger, drive)
	laptop.Connect("me@example.com")

	report, err := laptop.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, m.ID, report.BackupID)
	assert.Equal(t, 1, report.Customers.Added)
	assert.Equal(t, 0, report.Creditors.Added)

	customers, err := laptopLedger.List(ctx, ledger.KindReceivable)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Meena", customers[0].Name)
	assert.Equal(t, "Ravi", customers[1].Name)

	// restoring the same backup again adds nothing new
	report, err = laptop.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Customers.Added)
	assert.Equal(t, 1, report.Customers.Matched)

	customers, err = laptopLedger.List(ctx, ledger.KindReceivable)
	require.NoError(t, err)
	assert.Len(t, customers, 2)
	assert.Len(t, customers[1].LineItems, 1)
}

func TestService_RestoreCorruptObjectLeavesLedgerUntouched(t *testing.T) {
	ctx := context.Background()
	drive := cloud.NewMemoryDrive()

	src := cloud.NewService(newLedger(t, "Asha", "111"), drive)
	src.Connect("me@example.com")

	_, err := src.Backup(ctx)
	require.NoError(t, err)

	require.NoError(t, drive.Put(ctx, store.KeyCreditors+".json", []byte(`{not json`)))

	dstLedger := newLedger(t, "Ravi", "222")
	dst := cloud.NewService(dstLedger, drive)
	dst.Connect("me@example.com")

	_, err = dst.Restore(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrFormat)

	customers, err := dstLedger.List(ctx, ledger.KindReceivable)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Ravi", customers[0].Name)
}

func TestService_Disconnect(t *testing.T) {
	s := cloud.NewService(newLedger(t, "Ravi", "1"), cloud.NewMemoryDrive())
	s.Connect("me@example.com")

	_, err := s.Backup(context.Background())
	require.NoError(t, err)

	status := s.Disconnect()
	assert.False(t, status.Connected)
	assert.Empty(t, status.Account)
	assert.Nil(t, status.LastBackup)
}

// objectServer is a minimal bearer-token object store.
type objectServer struct {
	mu      sync.Mutex
	objects map[string]string
}

func (o *objectServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer s3cret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	name := strings.TrimPrefix(r.URL.Path, "/backups/")

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		o.objects[name] = string(body)
		w.WriteHeader(http.StatusCreated)
	case http.MethodGet:
		body, ok := o.objects[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		_, _ = io.WriteString(w, body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestHTTPDrive(t *testing.T) {
	srv := &objectServer{objects: map[string]string{}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	ctx := context.Background()
	drive := cloud.NewHTTPDrive(ts.URL+"/backups/", "s3cret")

	require.NoError(t, drive.Put(ctx, "a.json", []byte(`[]`)))
	assert.Equal(t, "[]", srv.objects["a.json"])

	data, err := drive.Get(ctx, "a.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	_, err = drive.Get(ctx, "missing.json")
	assert.ErrorIs(t, err, cloud.ErrObjectNotFound)

	bad := cloud.NewHTTPDrive(ts.URL+"/backups", "wrong")
	assert.Error(t, bad.Put(ctx, "a.json", []byte(`[]`)))
}

func TestHTTPDrive_BackupRoundTrip(t *testing.T) {
	ts := httptest.NewServer(&objectServer{objects: map[string]string{}})
	defer ts.Close()

	ctx := context.Background()
	drive := cloud.NewHTTPDrive(ts.URL+"/backups", "s3cret")

	src := cloud.NewService(newLedger(t, "Ravi", "111"), drive)
	src.Connect("me@example.com")

	_, err := src.Backup(ctx)
	require.NoError(t, err)

	dstLedger := ledger.NewService(store.NewMemory(), nil)
	dst := cloud.NewService(dstLedger, drive)
	dst.Connect("me@example.com")

	_, err = dst.Restore(ctx)
	require.NoError(t, err)

	customers, err := dstLedger.List(ctx, ledger.KindReceivable)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.True(t, customers[0].OutstandingTotal.Equal(decimal.NewFromInt(500)))
}
