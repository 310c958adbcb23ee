package order

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-checkout/internal/money"
	"github.com/noah-isme/backend-checkout/internal/pricing"
)

// ErrNotFound is returned by stores when an order does not exist or has been
// soft-deleted.
var ErrNotFound = errors.New("order: not found")

// Status describes the order lifecycle state.
type Status string

// Order lifecycle states.
const (
	StatusOpen      Status = "OPEN"
	StatusProcessed Status = "PROCESSED"
	StatusShipped   Status = "SHIPPED"
	StatusClosed    Status = "CLOSED"
	StatusCanceled  Status = "CANCELED"
)

// PaymentStatus describes the payment lifecycle state.
type PaymentStatus string

// Payment lifecycle states.
const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Order is a read model of a persisted order. This service never mutates it.
type Order struct {
	ID            uuid.UUID
	UserID        *uuid.UUID
	Status        Status
	PaymentStatus PaymentStatus
	Firstname     string
	Lastname      string
	Company       string
	Email         string
	Phone         string
	Comment       *string
	PaidTotal     money.Money
	RefundedTotal money.Money
	// Total is the cached order total. Once set it is authoritative over
	// recomputation.
	Total     *money.Money
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Params carries the raw column values used to construct an Order.
type Params struct {
	ID            uuid.UUID
	UserID        *uuid.UUID
	Status        string
	PaymentStatus string
	Firstname     string
	Lastname      string
	Company       string
	Email         string
	Phone         string
	Comment       *string
	PaidTotal     money.Money
	RefundedTotal money.Money
	Total         *money.Money
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// New validates raw order data into an Order. Invariants are enforced here
// rather than left to ad-hoc decoding: identity and lifecycle states must be
// present, monetary counters must not be negative.
func New(p Params) (Order, error) {
	if p.ID == uuid.Nil {
		return Order{}, errors.New("order: id is required")
	}
	status := Status(strings.ToUpper(strings.TrimSpace(p.Status)))
	if status == "" {
		return Order{}, errors.New("order: status is required")
	}
	paymentStatus := PaymentStatus(strings.ToUpper(strings.TrimSpace(p.PaymentStatus)))
	if paymentStatus == "" {
		return Order{}, errors.New("order: payment status is required")
	}
	if p.PaidTotal < 0 || p.RefundedTotal < 0 {
		return Order{}, errors.New("order: paid and refunded totals must not be negative")
	}
	return Order{
		ID:            p.ID,
		UserID:        p.UserID,
		Status:        status,
		PaymentStatus: paymentStatus,
		Firstname:     strings.TrimSpace(p.Firstname),
		Lastname:      strings.TrimSpace(p.Lastname),
		Company:       strings.TrimSpace(p.Company),
		Email:         strings.TrimSpace(p.Email),
		Phone:         strings.TrimSpace(p.Phone),
		Comment:       p.Comment,
		PaidTotal:     p.PaidTotal,
		RefundedTotal: p.RefundedTotal,
		Total:         p.Total,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		DeletedAt:     p.DeletedAt,
	}, nil
}

// Guest reports whether the order has no associated user account.
func (o Order) Guest() bool { return o.UserID == nil }

// RecipientName joins the non-empty name parts with a single space.
func (o Order) RecipientName() string {
	parts := make([]string, 0, 2)
	if o.Firstname != "" {
		parts = append(parts, o.Firstname)
	}
	if o.Lastname != "" {
		parts = append(parts, o.Lastname)
	}
	return strings.Join(parts, " ")
}

// Item is one product/quantity pairing within an order. Monetary values are
// derived from a resolved unit price, never stored.
type Item struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID string
	Quantity  int
	TaxCode   string
}

// NewItem validates raw item data.
func NewItem(id, orderID uuid.UUID, productID string, quantity int, taxCode string) (Item, error) {
	if id == uuid.Nil {
		return Item{}, errors.New("order: item id is required")
	}
	if orderID == uuid.Nil {
		return Item{}, errors.New("order: item order id is required")
	}
	if strings.TrimSpace(productID) == "" {
		return Item{}, errors.New("order: item product id is required")
	}
	if quantity <= 0 {
		return Item{}, errors.New("order: item quantity must be positive")
	}
	return Item{
		ID:        id,
		OrderID:   orderID,
		ProductID: strings.TrimSpace(productID),
		Quantity:  quantity,
		TaxCode:   strings.TrimSpace(taxCode),
	}, nil
}

// Total derives the line total for a resolved unit price.
func (i Item) Total(unitPrice money.Money) money.Money {
	return money.Money(i.Quantity) * unitPrice
}

// Tax derives the line tax for a resolved unit price under the given policy.
func (i Item) Tax(unitPrice money.Money, policy pricing.TaxPolicy) money.Money {
	if policy == nil {
		return 0
	}
	return policy.Tax(i.TaxCode, i.Total(unitPrice))
}

// Address belongs to an order; Shipping distinguishes the shipping address
// from the billing address. At most one of each exists per order.
type Address struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	Shipping   bool
	Street     string
	Street2    string
	City       string
	State      string
	Country    string
	PostalCode string
	Phone      string
}

// Complete reports whether the address carries everything a payment processor
// requires: street, city, country, and postal code.
func (a Address) Complete() bool {
	return a.Street != "" && a.City != "" && a.Country != "" && a.PostalCode != ""
}
