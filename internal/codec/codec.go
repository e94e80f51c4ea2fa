// Package codec reads and writes ledger collections in the JSON shape shared by
// storage, export files and cloud backups.
//
// Customers serialise as
//
//	[{"id", "name", "mobile", "email", "photo", "address": {"street", "city"},
//	  "transactions": [...], "totalDue", "lastTransactionDate", "status"}]
//
// and creditors use "payables", "totalOwed", "lastPayableDate" and "category".
// Amounts are JSON numbers and dates ISO-8601 strings.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/khata/internal/encoding"
	"github.com/MrJamesThe3rd/khata/internal/ledger"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type addressJSON struct {
	Street string `json:"street"`
	City   string `json:"city,omitempty"`
}

type paymentJSON struct {
	ID           string          `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	Date         isoTime         `json:"date"`
	Method       ledger.Method   `json:"method"`
	Description  string          `json:"description,omitempty"`
	ReceiptPhoto string          `json:"receiptPhoto,omitempty"`
}

type itemJSON struct {
	ID          string              `json:"id"`
	Amount      decimal.Decimal     `json:"amount"`
	BillPhoto   string              `json:"billPhoto,omitempty"`
	Date        isoTime             `json:"date"`
	DueDate     *isoTime            `json:"dueDate,omitempty"`
	Status      ledger.ItemStatus   `json:"status"`
	PaidDate    *isoTime            `json:"paidDate,omitempty"`
	Description string              `json:"description,omitempty"`
	Category    ledger.ItemCategory `json:"category,omitempty"`
	Payments    []paymentJSON       `json:"payments"`
}

type partyJSON struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Mobile  string        `json:"mobile"`
	Email   string        `json:"email,omitempty"`
	Photo   string        `json:"photo,omitempty"`
	Address addressJSON   `json:"address"`
	Status  ledger.Status `json:"status"`
}

type customerJSON struct {
	partyJSON
	Transactions        []itemJSON      `json:"transactions"`
	TotalDue            decimal.Decimal `json:"totalDue"`
	LastTransactionDate isoTime         `json:"lastTransactionDate"`
}

type creditorJSON struct {
	partyJSON
	Payables        []itemJSON            `json:"payables"`
	TotalOwed       decimal.Decimal       `json:"totalOwed"`
	LastPayableDate isoTime               `json:"lastPayableDate"`
	Category        ledger.EntityCategory `json:"category"`
}

// Encode writes c as indented JSON.
func Encode(w io.Writer, c ledger.Collection) error {
	var v any

	switch c.Kind {
	case ledger.KindReceivable:
		out := make([]customerJSON, len(c.Entities))
		for i, e := range c.Entities {
			out[i] = customerJSON{
				partyJSON:           toParty(e),
				Transactions:        toItems(e.LineItems),
				TotalDue:            e.OutstandingTotal,
				LastTransactionDate: isoTime(e.LastActivityDate),
			}
		}

		v = out
	case ledger.KindPayable:
		out := make([]creditorJSON, len(c.Entities))
		for i, e := range c.Entities {
			out[i] = creditorJSON{
				partyJSON:       toParty(e),
				Payables:        toItems(e.LineItems),
				TotalOwed:       e.OutstandingTotal,
				LastPayableDate: isoTime(e.LastActivityDate),
				Category:        e.Category,
			}
		}

		v = out
	default:
		return fmt.Errorf("encode ledger: unknown kind %q", c.Kind)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s ledger: %w", c.Kind, err)
	}

	return nil
}

// Marshal is Encode into a byte slice.
func Marshal(c ledger.Collection) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, c); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode reads a collection of the given kind. Input in any common text
// encoding is accepted. Every failure is a *FormatError; derived fields are
// taken as written and must be recomputed before use.
func Decode(r io.Reader, kind ledger.Kind) (ledger.Collection, error) {
	utf8r, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return ledger.Collection{}, &FormatError{Op: "read", Err: err}
	}

	dec := json.NewDecoder(utf8r)
	dec.DisallowUnknownFields()

	c := ledger.Collection{Kind: kind}

	switch kind {
	case ledger.KindReceivable:
		var in []customerJSON
		if err := dec.Decode(&in); err != nil {
			return ledger.Collection{}, &FormatError{Op: "decode", Err: err}
		}

		if in != nil {
			c.Entities = make([]ledger.Entity, len(in))
		}

		for i, cj := range in {
			e, err := fromParty(cj.partyJSON, cj.Transactions)
			if err != nil {
				return ledger.Collection{}, err
			}

			e.OutstandingTotal = cj.TotalDue
			e.LastActivityDate = cj.LastTransactionDate.Time()
			c.Entities[i] = e
		}
	case ledger.KindPayable:
		var in []creditorJSON
		if err := dec.Decode(&in); err != nil {
			return ledger.Collection{}, &FormatError{Op: "decode", Err: err}
		}

		if in != nil {
			c.Entities = make([]ledger.Entity, len(in))
		}

		for i, cj := range in {
			e, err := fromParty(cj.partyJSON, cj.Payables)
			if err != nil {
				return ledger.Collection{}, err
			}

			e.OutstandingTotal = cj.TotalOwed
			e.LastActivityDate = cj.LastPayableDate.Time()
			e.Category = cj.Category
			c.Entities[i] = e
		}
	default:
		return ledger.Collection{}, formatErr("decode", "unknown kind %q", kind)
	}

	if dec.More() {
		return ledger.Collection{}, formatErr("decode", "unexpected data after collection")
	}

	return c, nil
}

// Unmarshal is Decode from a byte slice.
func Unmarshal(data []byte, kind ledger.Kind) (ledger.Collection, error) {
	return Decode(bytes.NewReader(data), kind)
}

func toParty(e ledger.Entity) partyJSON {
	return partyJSON{
		ID:      e.ID,
		Name:    e.Name,
		Mobile:  e.Mobile,
		Email:   e.Email,
		Photo:   e.Photo,
		Address: addressJSON{Street: e.Address.Street, City: e.Address.City},
		Status:  e.Status,
	}
}

func toItems(items []ledger.LineItem) []itemJSON {
	if items == nil {
		return nil
	}

	out := make([]itemJSON, len(items))
	for i, li := range items {
		out[i] = itemJSON{
			ID:          li.ID,
			Amount:      li.Amount,
			BillPhoto:   li.BillPhoto,
			Date:        isoTime(li.Date),
			DueDate:     optionalTime(li.DueDate),
			Status:      li.Status,
			PaidDate:    optionalTime(li.PaidDate),
			Description: li.Description,
			Category:    li.Category,
		}

		if li.Payments != nil {
			out[i].Payments = make([]paymentJSON, len(li.Payments))
			for j, p := range li.Payments {
				out[i].Payments[j] = paymentJSON{
					ID:           p.ID,
					Amount:       p.Amount,
					Date:         isoTime(p.Date),
					Method:       p.Method,
					Description:  p.Description,
					ReceiptPhoto: p.ReceiptPhoto,
				}
			}
		}
	}

	return out
}

func fromParty(p partyJSON, items []itemJSON) (ledger.Entity, error) {
	if p.ID == "" {
		return ledger.Entity{}, formatErr("decode", "entity without id (mobile %q)", p.Mobile)
	}

	e := ledger.Entity{
		ID:      p.ID,
		Name:    p.Name,
		Mobile:  p.Mobile,
		Email:   p.Email,
		Photo:   p.Photo,
		Address: ledger.Address{Street: p.Address.Street, City: p.Address.City},
		Status:  p.Status,
	}

	if items != nil {
		e.LineItems = make([]ledger.LineItem, len(items))
	}

	for i, ij := range items {
		if ij.ID == "" {
			return ledger.Entity{}, formatErr("decode", "entity %s: line item without id", p.ID)
		}

		if ij.Date.Time().IsZero() {
			return ledger.Entity{}, formatErr("decode", "entity %s: line item %s has no date", p.ID, ij.ID)
		}

		li := ledger.LineItem{
			ID:          ij.ID,
			Amount:      ij.Amount,
			Date:        ij.Date.Time(),
			Description: ij.Description,
			BillPhoto:   ij.BillPhoto,
			Status:      ij.Status,
			PaidDate:    ij.PaidDate.ptr(),
			Category:    ij.Category,
			DueDate:     ij.DueDate.ptr(),
		}

		if li.Status != ledger.ItemPaid {
			li.Status = ledger.ItemUnpaid
		}

		if ij.Payments != nil {
			li.Payments = make([]ledger.Payment, len(ij.Payments))
		}

		for j, pj := range ij.Payments {
			if pj.Date.Time().IsZero() {
				return ledger.Entity{}, formatErr("decode", "entity %s: payment %s has no date", p.ID, pj.ID)
			}

			li.Payments[j] = ledger.Payment{
				ID:           pj.ID,
				Amount:       pj.Amount,
				Date:         pj.Date.Time(),
				Method:       pj.Method,
				Description:  pj.Description,
				ReceiptPhoto: pj.ReceiptPhoto,
			}
		}

		e.LineItems[i] = li
	}

	return e, nil
}
