package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/bakery-storefront/internal/domain/order"
	"github.com/example/bakery-storefront/internal/pagination"
)

const orderColumns = `id, order_number, user_id, items, delivery_address,
	subtotal, delivery_fee, tax, discount, total,
	status, payment_status, payment_method, delivery_details, timeline,
	notes, cancellation_reason, rating, loyalty_points_earned, loyalty_points_used,
	created_at, updated_at`

// PostgresOrderStore persists orders in PostgreSQL. Orders are append-and-update
// only, never deleted.
type PostgresOrderStore struct {
	db *sql.DB
}

// NewPostgresOrderStore creates an order store backed by the given database.
func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

// Create inserts a new order. A colliding order number yields
// ErrDuplicateNumber so the caller can regenerate and retry.
func (s *PostgresOrderStore) Create(ctx context.Context, o *order.Order) error {
	items, _ := json.Marshal(o.Items)
	address, _ := json.Marshal(o.DeliveryAddress)
	details, _ := json.Marshal(o.DeliveryDetails)
	timeline, _ := json.Marshal(o.Timeline)
	rating := marshalRating(o.Rating)

	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22)`

	_, err := s.db.ExecContext(ctx, query,
		o.ID, o.OrderNumber, o.UserID, items, address,
		o.Summary.Subtotal, o.Summary.DeliveryFee, o.Summary.Tax, o.Summary.Discount, o.Summary.Total,
		o.Status, o.PaymentStatus, o.PaymentMethod, details, timeline,
		o.Notes, o.CancellationReason, rating, o.LoyaltyPointsEarned, o.LoyaltyPointsUsed,
		o.CreatedAt, o.UpdatedAt)
	if isUniqueViolation(err, "orders_order_number_key") {
		return order.ErrDuplicateNumber
	}
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves an order by its ID.
func (s *PostgresOrderStore) GetByID(ctx context.Context, id string) (*order.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

// ListByUser returns one page of the user's orders, newest first, with the
// total count. An empty status matches all.
func (s *PostgresOrderStore) ListByUser(ctx context.Context, userID string, status order.Status, page pagination.Page) ([]*order.Order, int, error) {
	where := "WHERE user_id = $1"
	args := []any{userID}
	if status != "" {
		args = append(args, status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	return s.list(ctx, where, args, page)
}

// ListAll returns one page across every user, newest first, filtered by
// status and creation date range.
func (s *PostgresOrderStore) ListAll(ctx context.Context, filter order.AdminFilter, page pagination.Page) ([]*order.Order, int, error) {
	where := "WHERE TRUE"
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		where += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	return s.list(ctx, where, args, page)
}

// Update rewrites an order's mutable fields.
func (s *PostgresOrderStore) Update(ctx context.Context, o *order.Order) error {
	details, _ := json.Marshal(o.DeliveryDetails)
	timeline, _ := json.Marshal(o.Timeline)
	rating := marshalRating(o.Rating)

	query := `UPDATE orders SET
			status = $2,
			payment_status = $3,
			delivery_details = $4,
			timeline = $5,
			notes = $6,
			cancellation_reason = $7,
			rating = $8,
			updated_at = $9
		WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query,
		o.ID, o.Status, o.PaymentStatus, details, timeline,
		o.Notes, o.CancellationReason, rating, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (s *PostgresOrderStore) list(ctx context.Context, where string, args []any, page pagination.Page) ([]*order.Order, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM orders ` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var o order.Order
	var items, address, details, timeline []byte
	var rating []byte

	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &items, &address,
		&o.Summary.Subtotal, &o.Summary.DeliveryFee, &o.Summary.Tax, &o.Summary.Discount, &o.Summary.Total,
		&o.Status, &o.PaymentStatus, &o.PaymentMethod, &details, &timeline,
		&o.Notes, &o.CancellationReason, &rating, &o.LoyaltyPointsEarned, &o.LoyaltyPointsUsed,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	json.Unmarshal(items, &o.Items)
	json.Unmarshal(address, &o.DeliveryAddress)
	json.Unmarshal(details, &o.DeliveryDetails)
	json.Unmarshal(timeline, &o.Timeline)
	if len(rating) > 0 {
		var r order.Rating
		if json.Unmarshal(rating, &r) == nil {
			o.Rating = &r
		}
	}
	return &o, nil
}

// marshalRating keeps an unrated order's rating column NULL.
func marshalRating(r *order.Rating) any {
	if r == nil {
		return nil
	}
	b, _ := json.Marshal(r)
	return b
}
