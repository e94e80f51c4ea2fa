package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/khata/internal/ledger"
	"github.com/MrJamesThe3rd/khata/internal/ledger/store"
)

func TestScheduler_CheckForgetsEarlierDays(t *testing.T) {
	today := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	s := NewScheduler(ledger.NewService(store.NewMemory(), nil), LogNotifier{}, Settings{}, "INR", time.Hour).
		WithClock(func() time.Time { return today })

	s.sent["due_soon:t1"] = "2024-02-29"
	s.sent["overdue:t2"] = "2024-03-01"
	s.sent["overdue:t3"] = "2024-03-02"

	n, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Equal(t, map[string]string{"overdue:t3": "2024-03-02"}, s.sent)
}
