package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/khata/internal/codec"
	"github.com/MrJamesThe3rd/khata/internal/ledger"
)

type addressRequest struct {
	Street string `json:"street"`
	City   string `json:"city"`
}

type itemRequest struct {
	Amount      decimal.Decimal     `json:"amount"`
	Date        string              `json:"date"`
	Description string              `json:"description"`
	BillPhoto   string              `json:"billPhoto"`
	Category    ledger.ItemCategory `json:"category"`
	DueDate     string              `json:"dueDate"`
}

type createRequest struct {
	Name     string                `json:"name"`
	Mobile   string                `json:"mobile"`
	Email    string                `json:"email"`
	Photo    string                `json:"photo"`
	Address  addressRequest        `json:"address"`
	Category ledger.EntityCategory `json:"category"`
	Item     itemRequest           `json:"item"`
}

type updateRequest struct {
	Name     *string                `json:"name,omitempty"`
	Mobile   *string                `json:"mobile,omitempty"`
	Email    *string                `json:"email,omitempty"`
	Photo    *string                `json:"photo,omitempty"`
	Address  *addressRequest        `json:"address,omitempty"`
	Category *ledger.EntityCategory `json:"category,omitempty"`
}

type paymentRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	Date         string          `json:"date"`
	Method       ledger.Method   `json:"method"`
	Description  string          `json:"description"`
	ReceiptPhoto string          `json:"receiptPhoto"`
}

func (req createRequest) identity() ledger.EntityParams {
	return ledger.EntityParams{
		Name:     req.Name,
		Mobile:   req.Mobile,
		Email:    req.Email,
		Photo:    req.Photo,
		Address:  ledger.Address{Street: req.Address.Street, City: req.Address.City},
		Category: req.Category,
	}
}

// apply overlays the fields present in req onto the entity's current identity.
func (req updateRequest) apply(e ledger.Entity) ledger.EntityParams {
	p := ledger.EntityParams{
		Name:     e.Name,
		Mobile:   e.Mobile,
		Email:    e.Email,
		Photo:    e.Photo,
		Address:  e.Address,
		Category: e.Category,
	}

	if req.Name != nil {
		p.Name = *req.Name
	}

	if req.Mobile != nil {
		p.Mobile = *req.Mobile
	}

	if req.Email != nil {
		p.Email = *req.Email
	}

	if req.Photo != nil {
		p.Photo = *req.Photo
	}

	if req.Address != nil {
		p.Address = ledger.Address{Street: req.Address.Street, City: req.Address.City}
	}

	if req.Category != nil {
		p.Category = *req.Category
	}

	return p
}

func (req itemRequest) params() (ledger.LineItemParams, error) {
	date, err := parseDate("date", req.Date)
	if err != nil {
		return ledger.LineItemParams{}, err
	}

	p := ledger.LineItemParams{
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
		BillPhoto:   req.BillPhoto,
		Category:    req.Category,
	}

	if req.DueDate != "" {
		due, err := parseDate("dueDate", req.DueDate)
		if err != nil {
			return ledger.LineItemParams{}, err
		}

		p.DueDate = &due
	}

	return p, nil
}

func (req paymentRequest) params() (ledger.PaymentParams, error) {
	date, err := parseDate("date", req.Date)
	if err != nil {
		return ledger.PaymentParams{}, err
	}

	return ledger.PaymentParams{
		Amount:       req.Amount,
		Date:         date,
		Method:       req.Method,
		Description:  req.Description,
		ReceiptPhoto: req.ReceiptPhoto,
	}, nil
}

func parseDate(field, s string) (time.Time, error) {
	t, err := codec.ParseTime(s)
	if err != nil {
		return time.Time{}, &ledger.ValidationError{Field: field, Reason: err.Error()}
	}

	return t, nil
}
