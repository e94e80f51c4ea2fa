package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntityParams are the identity fields supplied when creating or editing an entity.
type EntityParams struct {
	Name     string
	Mobile   string
	Email    string
	Photo    string
	Address  Address
	Category EntityCategory
}

// LineItemParams describe a new bill.
type LineItemParams struct {
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	BillPhoto   string
	Category    ItemCategory
	DueDate     *time.Time
}

// PaymentParams describe a new payment. A zero Date means now and an empty
// Method means cash.
type PaymentParams struct {
	Amount       decimal.Decimal
	Date         time.Time
	Method       Method
	Description  string
	ReceiptPhoto string
}

// Engine applies mutations to collections. It holds no state besides a clock
// and an id source, performs no I/O and never modifies a collection it was
// given: every operation returns a fresh copy.
type Engine struct {
	now   func() time.Time
	newID func() string
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Now returns the engine clock in UTC.
func (en *Engine) Now() time.Time {
	return en.now().UTC()
}

// Recompute refreshes the derived fields of e using the engine clock.
func (en *Engine) Recompute(e Entity) Entity {
	return Recompute(e, en.Now())
}

// CreateEntity builds a new entity holding a single unpaid line item.
func (en *Engine) CreateEntity(kind Kind, identity EntityParams, first LineItemParams) (Entity, error) {
	identity, err := validateIdentity(kind, identity)
	if err != nil {
		return Entity{}, err
	}

	item, err := en.newLineItem(kind, first)
	if err != nil {
		return Entity{}, err
	}

	e := Entity{
		ID:        en.newID(),
		LineItems: []LineItem{item},
	}
	applyIdentity(&e, identity)

	return en.Recompute(e), nil
}

// AddEntity creates an entity and appends it to c.
func (en *Engine) AddEntity(c Collection, identity EntityParams, first LineItemParams) (Collection, Entity, error) {
	e, err := en.CreateEntity(c.Kind, identity, first)
	if err != nil {
		return c, Entity{}, err
	}

	out := c.Clone()
	out.Entities = append(out.Entities, e)

	return out, e.Clone(), nil
}

// UpdateEntity replaces the identity fields of an entity. Line items are untouched.
func (en *Engine) UpdateEntity(c Collection, entityID string, identity EntityParams) (Collection, error) {
	identity, err := validateIdentity(c.Kind, identity)
	if err != nil {
		return c, err
	}

	return en.update(c, entityID, func(e *Entity) error {
		applyIdentity(e, identity)
		return nil
	})
}

// DeleteEntity removes an entity together with its line items and payments.
func (en *Engine) DeleteEntity(c Collection, entityID string) (Collection, error) {
	i := c.Find(entityID)
	if i < 0 {
		return c, &NotFoundError{What: "entity", ID: entityID}
	}

	out := c.Clone()
	out.Entities = append(out.Entities[:i], out.Entities[i+1:]...)

	return out, nil
}

// AddLineItem appends a new unpaid line item to an entity.
func (en *Engine) AddLineItem(c Collection, entityID string, params LineItemParams) (Collection, error) {
	item, err := en.newLineItem(c.Kind, params)
	if err != nil {
		return c, err
	}

	return en.update(c, entityID, func(e *Entity) error {
		e.LineItems = append(e.LineItems, item)
		return nil
	})
}

// DeleteLineItem removes a line item and its payments.
func (en *Engine) DeleteLineItem(c Collection, entityID, itemID string) (Collection, error) {
	return en.update(c, entityID, func(e *Entity) error {
		i := e.FindItem(itemID)
		if i < 0 {
			return &NotFoundError{What: "line item", ID: itemID}
		}

		e.LineItems = append(e.LineItems[:i], e.LineItems[i+1:]...)

		return nil
	})
}

// AddPayment records a payment against a line item. Once the payments cover
// the amount the item becomes paid, dated with the payment that settled it.
// Overpayment is recorded as given; it only drives the remaining balance to zero.
func (en *Engine) AddPayment(c Collection, entityID, itemID string, params PaymentParams) (Collection, error) {
	payment, err := en.newPayment(params)
	if err != nil {
		return c, err
	}

	return en.update(c, entityID, func(e *Entity) error {
		i := e.FindItem(itemID)
		if i < 0 {
			return &NotFoundError{What: "line item", ID: itemID}
		}

		item := &e.LineItems[i]
		item.Payments = append(item.Payments, payment)

		if item.Status != ItemPaid && item.Paid().GreaterThanOrEqual(item.Amount) {
			paidAt := payment.Date
			item.Status = ItemPaid
			item.PaidDate = &paidAt
		}

		return nil
	})
}

// MarkLineItemPaid settles a line item regardless of its payments, for money
// received outside the ledger.
func (en *Engine) MarkLineItemPaid(c Collection, entityID, itemID string) (Collection, error) {
	now := en.Now()

	return en.update(c, entityID, func(e *Entity) error {
		i := e.FindItem(itemID)
		if i < 0 {
			return &NotFoundError{What: "line item", ID: itemID}
		}

		e.LineItems[i].Status = ItemPaid
		e.LineItems[i].PaidDate = &now

		return nil
	})
}

// update clones c, applies fn to the named entity and recomputes it. When fn
// fails the original collection is returned unchanged.
func (en *Engine) update(c Collection, entityID string, fn func(*Entity) error) (Collection, error) {
	i := c.Find(entityID)
	if i < 0 {
		return c, &NotFoundError{What: "entity", ID: entityID}
	}

	out := c.Clone()
	if err := fn(&out.Entities[i]); err != nil {
		return c, err
	}

	out.Entities[i] = en.Recompute(out.Entities[i])

	return out, nil
}

func (en *Engine) newLineItem(kind Kind, p LineItemParams) (LineItem, error) {
	if !p.Amount.IsPositive() {
		return LineItem{}, invalid("amount", "must be greater than zero")
	}

	if p.Date.IsZero() {
		return LineItem{}, invalid("date", "is required")
	}

	item := LineItem{
		ID:          en.newID(),
		Amount:      p.Amount,
		Date:        p.Date.UTC(),
		Description: strings.TrimSpace(p.Description),
		BillPhoto:   p.BillPhoto,
		Status:      ItemUnpaid,
		Payments:    []Payment{},
	}

	switch kind {
	case KindPayable:
		item.Category = p.Category
		if item.Category == "" {
			item.Category = ItemOther
		}

		if !item.Category.Valid() {
			return LineItem{}, invalid("category", "unknown payable category "+string(p.Category))
		}

		if p.DueDate != nil {
			due := p.DueDate.UTC()
			item.DueDate = &due
		}
	default:
		if p.Category != "" {
			return LineItem{}, invalid("category", "not supported for receivables")
		}

		if p.DueDate != nil {
			return LineItem{}, invalid("dueDate", "not supported for receivables")
		}
	}

	return item, nil
}

func (en *Engine) newPayment(p PaymentParams) (Payment, error) {
	if !p.Amount.IsPositive() {
		return Payment{}, invalid("amount", "must be greater than zero")
	}

	method := p.Method
	if method == "" {
		method = MethodCash
	}

	if !method.Valid() {
		return Payment{}, invalid("method", "unknown payment method "+string(p.Method))
	}

	date := p.Date
	if date.IsZero() {
		date = en.Now()
	}

	return Payment{
		ID:           en.newID(),
		Amount:       p.Amount,
		Date:         date.UTC(),
		Method:       method,
		Description:  strings.TrimSpace(p.Description),
		ReceiptPhoto: p.ReceiptPhoto,
	}, nil
}

func validateIdentity(kind Kind, p EntityParams) (EntityParams, error) {
	if !kind.Valid() {
		return p, invalid("kind", "unknown ledger kind "+string(kind))
	}

	p.Name = strings.TrimSpace(p.Name)
	p.Mobile = strings.TrimSpace(p.Mobile)
	p.Email = strings.TrimSpace(p.Email)

	if p.Mobile == "" {
		return p, invalid("mobile", "is required")
	}

	switch kind {
	case KindPayable:
		if p.Category == "" {
			p.Category = CategoryOther
		}

		if !p.Category.Valid() {
			return p, invalid("category", "unknown creditor category "+string(p.Category))
		}
	default:
		if p.Category != "" {
			return p, invalid("category", "not supported for receivables")
		}
	}

	return p, nil
}

func applyIdentity(e *Entity, p EntityParams) {
	e.Name = p.Name
	e.Mobile = p.Mobile
	e.Email = p.Email
	e.Photo = p.Photo
	e.Address = p.Address
	e.Category = p.Category
}
