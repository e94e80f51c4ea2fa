package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/khata/internal/ledger"
)

type addressResponse struct {
	Street string `json:"street"`
	City   string `json:"city,omitempty"`
}

type paymentResponse struct {
	ID           string          `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	Date         time.Time       `json:"date"`
	Method       ledger.Method   `json:"method"`
	Description  string          `json:"description,omitempty"`
	ReceiptPhoto string          `json:"receiptPhoto,omitempty"`
}

type itemResponse struct {
	ID          string              `json:"id"`
	Amount      decimal.Decimal     `json:"amount"`
	Remaining   decimal.Decimal     `json:"remaining"`
	Date        time.Time           `json:"date"`
	DueDate     *time.Time          `json:"dueDate,omitempty"`
	Description string              `json:"description,omitempty"`
	BillPhoto   string              `json:"billPhoto,omitempty"`
	Category    ledger.ItemCategory `json:"category,omitempty"`
	Status      ledger.ItemStatus   `json:"status"`
	PaidDate    *time.Time          `json:"paidDate,omitempty"`
	Payments    []paymentResponse   `json:"payments"`
}

type entityResponse struct {
	ID               string                `json:"id"`
	Name             string                `json:"name"`
	Mobile           string                `json:"mobile"`
	Email            string                `json:"email,omitempty"`
	Photo            string                `json:"photo,omitempty"`
	Address          addressResponse       `json:"address"`
	Category         ledger.EntityCategory `json:"category,omitempty"`
	LineItems        []itemResponse        `json:"lineItems"`
	OutstandingTotal decimal.Decimal       `json:"outstandingTotal"`
	LastActivityDate time.Time             `json:"lastActivityDate"`
	Status           ledger.Status         `json:"status"`
}

func toResponse(e ledger.Entity) entityResponse {
	resp := entityResponse{
		ID:               e.ID,
		Name:             e.Name,
		Mobile:           e.Mobile,
		Email:            e.Email,
		Photo:            e.Photo,
		Address:          addressResponse{Street: e.Address.Street, City: e.Address.City},
		Category:         e.Category,
		LineItems:        make([]itemResponse, len(e.LineItems)),
		OutstandingTotal: e.OutstandingTotal,
		LastActivityDate: e.LastActivityDate,
		Status:           e.Status,
	}

	for i, li := range e.LineItems {
		item := itemResponse{
			ID:          li.ID,
			Amount:      li.Amount,
			Remaining:   ledger.LineItemRemaining(li),
			Date:        li.Date,
			DueDate:     li.DueDate,
			Description: li.Description,
			BillPhoto:   li.BillPhoto,
			Category:    li.Category,
			Status:      li.Status,
			PaidDate:    li.PaidDate,
			Payments:    make([]paymentResponse, len(li.Payments)),
		}

		for j, p := range li.Payments {
			item.Payments[j] = paymentResponse{
				ID:           p.ID,
				Amount:       p.Amount,
				Date:         p.Date,
				Method:       p.Method,
				Description:  p.Description,
				ReceiptPhoto: p.ReceiptPhoto,
			}
		}

		resp.LineItems[i] = item
	}

	return resp
}

func toResponseList(entities []ledger.Entity) []entityResponse {
	resp := make([]entityResponse, len(entities))
	for i, e := range entities {
		resp[i] = toResponse(e)
	}

	return resp
}
