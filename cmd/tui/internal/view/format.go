package view

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/khata/internal/codec"
	"github.com/MrJamesThe3rd/khata/internal/ledger"
	"github.com/MrJamesThe3rd/khata/internal/money"
)

const dbTimeout = 5 * time.Second

// FormatAmount renders an amount in the configured currency.
func FormatAmount(d decimal.Decimal, currency string) string {
	return money.Format(d, currency)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.Format(time.DateOnly)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

func kindTitle(kind ledger.Kind) string {
	if kind == ledger.KindPayable {
		return "Creditors"
	}

	return "Customers"
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, errors.New("not a number")
	}

	if !d.IsPositive() {
		return decimal.Zero, errors.New("must be greater than zero")
	}

	return d, nil
}

func validateAmount(s string) error {
	_, err := parseAmount(s)
	return err
}

// parseDate accepts the same formats as import files. Empty means today.
func parseDate(s string) (time.Time, error) {
	t, err := codec.ParseTime(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.New("use YYYY-MM-DD")
	}

	if t.IsZero() {
		return time.Now().UTC(), nil
	}

	return t, nil
}

func validateDate(s string) error {
	_, err := parseDate(s)
	return err
}

func statusStyle(s string) string {
	color := lipgloss.Color("46")

	switch s {
	case string(ledger.StatusUnpaid):
		color = lipgloss.Color("196")
	case string(ledger.StatusPartial):
		color = lipgloss.Color("214")
	}

	return lipgloss.NewStyle().Foreground(color).Render(s)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func errorStyle(err error) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("Error: " + err.Error())
}
