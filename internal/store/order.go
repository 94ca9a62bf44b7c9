package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suyanik/Einkauflist/internal/model"
)

// ErrItemNotFound is returned by Complete when a price update references an
// item that does not belong to the order. The transaction is rolled back, so
// the order keeps status PENDING and no prices are written.
var ErrItemNotFound = errors.New("order item not found")

// ErrOrderNotFound is returned by Complete when the order id is unknown.
var ErrOrderNotFound = errors.New("order not found")

// CartItem is one requested product line at intake time.
type CartItem struct {
	ProductID string
	Quantity  float64
}

// PriceUpdate sets the observed purchase price on one order item.
type PriceUpdate struct {
	ItemID string
	Price  decimal.Decimal
}

type OrderStore struct {
	db *sql.DB
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

func scanOrder(scanner interface{ Scan(...any) error }) (*model.Order, error) {
	var o model.Order
	err := scanner.Scan(&o.ID, &o.Status, &o.CreatedBy, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

const orderCols = `id, status, created_by, created_at`

// Create inserts a new PENDING order and one item per cart line in a single
// transaction. Product ids are not validated here; a bad id surfaces as a
// foreign key failure.
func (s *OrderStore) Create(createdBy string, cart []CartItem) (*model.Order, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin create order: %w", err)
	}
	defer tx.Rollback()

	orderID := uuid.NewString()
	_, err = tx.Exec(
		`INSERT INTO orders (id, status, created_by, created_at) VALUES (?, ?, ?, ?)`,
		orderID, model.StatusPending, createdBy, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for _, line := range cart {
		_, err = tx.Exec(
			`INSERT INTO order_items (id, order_id, product_id, quantity) VALUES (?, ?, ?, ?)`,
			uuid.NewString(), orderID, line.ProductID, line.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create order: %w", err)
	}
	return s.GetByID(orderID)
}

// GetByID returns the order with its items, or nil when absent.
func (s *OrderStore) GetByID(id string) (*model.Order, error) {
	row := s.db.QueryRow(`SELECT `+orderCols+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT id, order_id, product_id, quantity, price FROM order_items WHERE order_id = ? ORDER BY rowid ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}

// ListPending returns PENDING orders newest first, each with its items, the
// item's product names/unit, and the creating user's name and role.
func (s *OrderStore) ListPending() ([]model.Order, error) {
	rows, err := s.db.Query(
		`SELECT o.id, o.status, o.created_by, o.created_at, u.name, u.role
		 FROM orders o
		 JOIN users u ON u.id = o.created_by
		 WHERE o.status = ?
		 ORDER BY o.created_at DESC`,
		model.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	index := make(map[string]int)
	for rows.Next() {
		var o model.Order
		var creator model.Creator
		if err := rows.Scan(&o.ID, &o.Status, &o.CreatedBy, &o.CreatedAt, &creator.Name, &creator.Role); err != nil {
			return nil, fmt.Errorf("scan pending order: %w", err)
		}
		o.Creator = &creator
		o.Items = []model.OrderItem{}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := s.db.Query(
		`SELECT i.id, i.order_id, i.product_id, i.quantity, i.price, p.name_tr, p.name_de, p.unit
		 FROM order_items i
		 JOIN orders o ON o.id = i.order_id
		 JOIN products p ON p.id = i.product_id
		 WHERE o.status = ?
		 ORDER BY i.rowid ASC`,
		model.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item model.OrderItem
		var ref model.ProductRef
		if err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price,
			&ref.NameTR, &ref.NameDE, &ref.Unit); err != nil {
			return nil, fmt.Errorf("scan pending item: %w", err)
		}
		item.Product = &ref
		if i, ok := index[item.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return orders, itemRows.Err()
}

// Complete writes the given prices onto the order's items and flips the
// status to COMPLETED, all in one transaction. An update referencing an item
// outside the order aborts the whole batch with ErrItemNotFound. Completing
// an already completed order again is allowed and rewrites the same prices.
func (s *OrderStore) Complete(orderID string, updates []PriceUpdate) (*model.Order, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin complete order: %w", err)
	}
	defer tx.Rollback()

	for _, u := range updates {
		res, err := tx.Exec(
			`UPDATE order_items SET price = ? WHERE id = ? AND order_id = ?`,
			u.Price, u.ItemID, orderID,
		)
		if err != nil {
			return nil, fmt.Errorf("update item price: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("update item price: %w", err)
		}
		if n == 0 {
			return nil, fmt.Errorf("item %s: %w", u.ItemID, ErrItemNotFound)
		}
	}

	res, err := tx.Exec(`UPDATE orders SET status = ? WHERE id = ?`, model.StatusCompleted, orderID)
	if err != nil {
		return nil, fmt.Errorf("complete order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("complete order: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrOrderNotFound)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit complete order: %w", err)
	}
	return s.GetByID(orderID)
}

// PricedItem is one completed order line joined to its category, as consumed
// by the monthly report.
type PricedItem struct {
	Price        decimal.NullDecimal
	CategoryName string
}

// ListCompletedItemPrices returns price/category pairs for every item on
// every COMPLETED order created inside [start, end], in order creation order.
func (s *OrderStore) ListCompletedItemPrices(start, end time.Time) ([]PricedItem, error) {
	rows, err := s.db.Query(
		`SELECT i.price, c.name
		 FROM orders o
		 JOIN order_items i ON i.order_id = o.id
		 JOIN products p ON p.id = i.product_id
		 JOIN categories c ON c.id = p.category_id
		 WHERE o.status = ? AND o.created_at >= ? AND o.created_at <= ?
		 ORDER BY o.created_at ASC, i.rowid ASC`,
		model.StatusCompleted, start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list completed item prices: %w", err)
	}
	defer rows.Close()

	var items []PricedItem
	for rows.Next() {
		var it PricedItem
		if err := rows.Scan(&it.Price, &it.CategoryName); err != nil {
			return nil, fmt.Errorf("scan completed item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
