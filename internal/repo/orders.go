package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-checkout/internal/money"
	"github.com/noah-isme/backend-checkout/internal/order"
)

// Orders implements order.Store against the order-management schema. All
// queries are read-only; this service never mutates order rows.
type Orders struct {
	Pool *pgxpool.Pool
}

const orderColumns = `id, user_id, status, payment_status,
	COALESCE(firstname, ''), COALESCE(lastname, ''), COALESCE(company, ''),
	COALESCE(email, ''), COALESCE(phone, ''), comment,
	paid_total, refunded_total, total, created_at, updated_at, deleted_at`

// Order loads a single order by id, excluding soft-deleted rows.
func (r Orders) Order(ctx context.Context, id uuid.UUID) (order.Order, error) {
	row := r.Pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)
	var (
		p         order.Params
		userID    pgtype.UUID
		comment   pgtype.Text
		total     pgtype.Int8
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
		deletedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&p.ID, &userID, &p.Status, &p.PaymentStatus,
		&p.Firstname, &p.Lastname, &p.Company,
		&p.Email, &p.Phone, &comment,
		&p.PaidTotal, &p.RefundedTotal, &total, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrNotFound
		}
		return order.Order{}, fmt.Errorf("repo: load order %s: %w", id, err)
	}
	if userID.Valid {
		uid := uuid.UUID(userID.Bytes)
		p.UserID = &uid
	}
	if comment.Valid {
		c := comment.String
		p.Comment = &c
	}
	if total.Valid {
		t := money.Money(total.Int64)
		p.Total = &t
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	if deletedAt.Valid {
		d := deletedAt.Time
		p.DeletedAt = &d
	}
	return order.New(p)
}

// Items returns the order's line items in insertion order.
func (r Orders) Items(ctx context.Context, orderID uuid.UUID) ([]order.Item, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT id, order_id, product_id, quantity, COALESCE(tax_code, '')
		 FROM items WHERE order_id = $1 ORDER BY created_at, id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("repo: list items for order %s: %w", orderID, err)
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var (
			id        uuid.UUID
			ordID     uuid.UUID
			productID string
			quantity  int
			taxCode   string
		)
		if err := rows.Scan(&id, &ordID, &productID, &quantity, &taxCode); err != nil {
			return nil, fmt.Errorf("repo: scan item: %w", err)
		}
		item, err := order.NewItem(id, ordID, productID, quantity, taxCode)
		if err != nil {
			return nil, fmt.Errorf("repo: invalid item row %s: %w", id, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo: iterate items: %w", err)
	}
	return items, nil
}

// Address returns the shipping or billing address for an order, or nil when
// none exists.
func (r Orders) Address(ctx context.Context, orderID uuid.UUID, shipping bool) (*order.Address, error) {
	row := r.Pool.QueryRow(ctx,
		`SELECT id, order_id, shipping,
			COALESCE(street, ''), COALESCE(street2, ''), COALESCE(city, ''),
			COALESCE(state, ''), COALESCE(country, ''), COALESCE(postal_code, ''),
			COALESCE(phone, '')
		 FROM addresses WHERE order_id = $1 AND shipping = $2 LIMIT 1`,
		orderID, shipping,
	)
	var a order.Address
	err := row.Scan(
		&a.ID, &a.OrderID, &a.Shipping,
		&a.Street, &a.Street2, &a.City,
		&a.State, &a.Country, &a.PostalCode,
		&a.Phone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("repo: load address for order %s: %w", orderID, err)
	}
	return &a, nil
}

// Ping probes database connectivity for readiness checks.
func (r Orders) Ping(ctx context.Context) error {
	if r.Pool == nil {
		return errors.New("repo: pool is not configured")
	}
	return r.Pool.Ping(ctx)
}
