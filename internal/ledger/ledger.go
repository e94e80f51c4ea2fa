// Package ledger implements the receivables/payables engine: deriving balances
// and status from payments, applying mutations, and merging two independently
// edited collections.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind selects which side of the book a collection belongs to.
type Kind string

const (
	KindReceivable Kind = "receivable" // customers owe us
	KindPayable    Kind = "payable"    // we owe creditors
)

func (k Kind) Valid() bool {
	return k == KindReceivable || k == KindPayable
}

// Status is the aggregate state of an entity.
type Status string

const (
	StatusPaid    Status = "paid"
	StatusUnpaid  Status = "unpaid"
	StatusPartial Status = "partial"
)

// ItemStatus is the local state of a single line item.
type ItemStatus string

const (
	ItemPaid   ItemStatus = "paid"
	ItemUnpaid ItemStatus = "unpaid"
)

// Method is how a payment was settled.
type Method string

const (
	MethodCash         Method = "cash"
	MethodOnline       Method = "online"
	MethodBankTransfer Method = "bank_transfer"
	MethodCheque       Method = "cheque"
	MethodOther        Method = "other"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodOnline, MethodBankTransfer, MethodCheque, MethodOther:
		return true
	}

	return false
}

// EntityCategory classifies a creditor.
type EntityCategory string

const (
	CategorySupplier EntityCategory = "supplier"
	CategoryLender   EntityCategory = "lender"
	CategoryService  EntityCategory = "service"
	CategoryOther    EntityCategory = "other"
)

func (c EntityCategory) Valid() bool {
	switch c {
	case CategorySupplier, CategoryLender, CategoryService, CategoryOther:
		return true
	}

	return false
}

// ItemCategory classifies a payable.
type ItemCategory string

const (
	ItemPurchase ItemCategory = "purchase"
	ItemLoan     ItemCategory = "loan"
	ItemService  ItemCategory = "service"
	ItemRent     ItemCategory = "rent"
	ItemOther    ItemCategory = "other"
)

func (c ItemCategory) Valid() bool {
	switch c {
	case ItemPurchase, ItemLoan, ItemService, ItemRent, ItemOther:
		return true
	}

	return false
}

// Address of an entity. Both fields are optional.
type Address struct {
	Street string
	City   string
}

// Payment settles part or all of a line item.
type Payment struct {
	ID           string
	Amount       decimal.Decimal
	Date         time.Time
	Method       Method
	Description  string
	ReceiptPhoto string
}

// LineItem is a single bill: a Transaction for receivables, a Payable for payables.
type LineItem struct {
	ID          string
	Amount      decimal.Decimal
	Date        time.Time // business date, not creation time
	Description string
	BillPhoto   string
	Status      ItemStatus
	PaidDate    *time.Time
	Payments    []Payment

	// Payables only.
	Category ItemCategory
	DueDate  *time.Time
}

// Entity is a Customer or a Creditor.
type Entity struct {
	ID       string
	Name     string
	Mobile   string
	Email    string
	Photo    string
	Address  Address
	Category EntityCategory // payables only

	LineItems []LineItem

	// Derived by Recompute; never set directly.
	OutstandingTotal decimal.Decimal
	LastActivityDate time.Time
	Status           Status
}

// Collection is every entity of one Kind. It is the unit that gets persisted,
// exported and merged.
type Collection struct {
	Kind     Kind
	Entities []Entity
}

// Find returns the index of the entity with the given id, or -1.
func (c Collection) Find(id string) int {
	for i := range c.Entities {
		if c.Entities[i].ID == id {
			return i
		}
	}

	return -1
}

// Get returns a copy of the entity with the given id.
func (c Collection) Get(id string) (Entity, error) {
	i := c.Find(id)
	if i < 0 {
		return Entity{}, &NotFoundError{What: "entity", ID: id}
	}

	return c.Entities[i].Clone(), nil
}

// FindItem returns the index of the line item with the given id, or -1.
func (e Entity) FindItem(id string) int {
	for i := range e.LineItems {
		if e.LineItems[i].ID == id {
			return i
		}
	}

	return -1
}

// Clone returns a deep copy sharing no slices or pointers with c.
func (c Collection) Clone() Collection {
	out := Collection{Kind: c.Kind}
	if c.Entities != nil {
		out.Entities = make([]Entity, len(c.Entities))
		for i, e := range c.Entities {
			out.Entities[i] = e.Clone()
		}
	}

	return out
}

func (e Entity) Clone() Entity {
	out := e
	if e.LineItems != nil {
		out.LineItems = make([]LineItem, len(e.LineItems))
		for i, item := range e.LineItems {
			out.LineItems[i] = item.Clone()
		}
	}

	return out
}

func (li LineItem) Clone() LineItem {
	out := li
	out.PaidDate = cloneTime(li.PaidDate)
	out.DueDate = cloneTime(li.DueDate)

	if li.Payments != nil {
		out.Payments = make([]Payment, len(li.Payments))
		copy(out.Payments, li.Payments)
	}

	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	v := *t

	return &v
}
