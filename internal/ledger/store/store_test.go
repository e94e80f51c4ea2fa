package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/khata/internal/database"
	"github.com/MrJamesThe3rd/khata/internal/ledger"
	"github.com/MrJamesThe3rd/khata/internal/ledger/store"
)

func newSQLite(t *testing.T) *store.Store {
	t.Helper()

	db, err := database.New(context.Background(), database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return store.New(db, database.DriverSQLite)
}

func sample(kind ledger.Kind, name string) ledger.Collection {
	on := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	return ledger.Collection{
		Kind: kind,
		Entities: []ledger.Entity{
			ledger.Recompute(ledger.Entity{
				ID:     "e1",
				Name:   name,
				Mobile: "9876543210",
				LineItems: []ledger.LineItem{{
					ID:       "t1",
					Amount:   decimal.NewFromInt(1000),
					Date:     on,
					Status:   ledger.ItemUnpaid,
					Payments: []ledger.Payment{},
				}},
			}, on),
		},
	}
}

type repo interface {
	Load(ctx context.Context, kind ledger.Kind) (ledger.Collection, error)
	Save(ctx context.Context, c ledger.Collection) error
}

func TestRepositories(t *testing.T) {
	impls := map[string]func(t *testing.T) repo{
		"sqlite": func(t *testing.T) repo { return newSQLite(t) },
		"memory": func(*testing.T) repo { return store.NewMemory() },
	}

	for name, newRepo := range impls {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("missing collection loads empty", func(t *testing.T) {
				r := newRepo(t)

				c, err := r.Load(ctx, ledger.KindReceivable)
				require.NoError(t, err)
				assert.Equal(t, ledger.KindReceivable, c.Kind)
				assert.Empty(t, c.Entities)
			})

			t.Run("save then load", func(t *testing.T) {
				r := newRepo(t)

				require.NoError(t, r.Save(ctx, sample(ledger.KindReceivable, "Ravi")))

				c, err := r.Load(ctx, ledger.KindReceivable)
				require.NoError(t, err)
				require.Len(t, c.Entities, 1)
				assert.Equal(t, "Ravi", c.Entities[0].Name)
				assert.True(t, c.Entities[0].OutstandingTotal.Equal(decimal.NewFromInt(1000)))
				assert.Equal(t, ledger.StatusUnpaid, c.Entities[0].Status)
			})

			t.Run("save overwrites and kinds are separate", func(t *testing.T) {
				r := newRepo(t)

				require.NoError(t, r.Save(ctx, sample(ledger.KindReceivable, "Ravi")))
				require.NoError(t, r.Save(ctx, sample(ledger.KindReceivable, "Ravi K")))
				require.NoError(t, r.Save(ctx, sample(ledger.KindPayable, "Sharma")))

				customers, err := r.Load(ctx, ledger.KindReceivable)
				require.NoError(t, err)
				require.Len(t, customers.Entities, 1)
				assert.Equal(t, "Ravi K", customers.Entities[0].Name)

				creditors, err := r.Load(ctx, ledger.KindPayable)
				require.NoError(t, err)
				require.Len(t, creditors.Entities, 1)
				assert.Equal(t, "Sharma", creditors.Entities[0].Name)
			})

			t.Run("unknown kind", func(t *testing.T) {
				r := newRepo(t)

				err := r.Save(ctx, ledger.Collection{Kind: "vendor"})
				assert.Error(t, err)
			})
		})
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	c := sample(ledger.KindPayable, "Sharma")
	require.NoError(t, m.Save(ctx, c))

	c.Entities[0].Name = "changed after save"

	loaded, err := m.Load(ctx, ledger.KindPayable)
	require.NoError(t, err)
	assert.Equal(t, "Sharma", loaded.Entities[0].Name)

	loaded.Entities[0].LineItems[0].Amount = decimal.NewFromInt(1)

	again, err := m.Load(ctx, ledger.KindPayable)
	require.NoError(t, err)
	assert.True(t, again.Entities[0].LineItems[0].Amount.Equal(decimal.NewFromInt(1000)))
}

func TestKey(t *testing.T) {
	k, err := store.Key(ledger.KindReceivable)
	require.NoError(t, err)
	assert.Equal(t, "customer_credit_data", k)

	k, err = store.Key(ledger.KindPayable)
	require.NoError(t, err)
	assert.Equal(t, "customer_credit_creditors", k)
}

func TestService_WithSQLite(t *testing.T) {
	ctx := context.Background()
	svc := ledger.NewService(newSQLite(t), nil)

	created, err := svc.Create(ctx, ledger.KindReceivable,
		ledger.EntityParams{Name: "Anita", Mobile: "9123456789"},
		ledger.LineItemParams{Amount: decimal.NewFromInt(750), Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	)
	require.NoError(t, err)

	itemID := created.LineItems[0].ID

	e, err := svc.AddPayment(ctx, ledger.KindReceivable, created.ID, itemID, ledger.PaymentParams{
		Amount: decimal.NewFromInt(250),
		Date:   time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPartial, e.Status)

	got, err := svc.Get(ctx, ledger.KindReceivable, created.ID)
	require.NoError(t, err)
	assert.True(t, got.OutstandingTotal.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, ledger.MethodCash, got.LineItems[0].Payments[0].Method)
}
