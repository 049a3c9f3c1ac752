package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/okunev/bookmart/internal/models"
)

type OrderRepo struct {
	DB DBTX
}

const createOrder = `-- name: CreateOrder
INSERT INTO orders (id, account_id, created_at, total)
VALUES ($1, $2, $3, $4)
RETURNING id, account_id, created_at, total
`

const createOrderItem = `-- name: CreateOrderItem
INSERT INTO order_items (id, order_id, book_id, title, unit_price, quantity)
VALUES ($1, $2, $3, $4, $5, $6)
`

// CreateOrder persists the order and its item snapshots.
// Run it inside a transaction together with the balance debit so both commit or neither.
func (r *OrderRepo) CreateOrder(ctx context.Context, order models.Order) (models.Order, error) {
	rows, _ := r.DB.Query(ctx, createOrder, order.ID, order.AccountID, order.CreatedAt, order.Total)
	created, err := pgx.CollectOneRow(rows, rowToOrder)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	created.Items = make([]models.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		item.ID = uuid.New()
		item.OrderID = created.ID

		_, err := r.DB.Exec(ctx, createOrderItem, item.ID, item.OrderID, item.BookID, item.Title, item.UnitPrice, item.Quantity)
		if err != nil {
			return created, fmt.Errorf("db error: %w", err)
		}

		created.Items = append(created.Items, item)
	}

	return created, nil
}

const listOrders = `-- name: ListOrders
SELECT id, account_id, created_at, total FROM orders
WHERE account_id = $1
ORDER BY created_at DESC
`

const listOrderItems = `-- name: ListOrderItems
SELECT oi.id, oi.order_id, oi.book_id, oi.title, oi.unit_price, oi.quantity
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
WHERE o.account_id = $1
`

func (r *OrderRepo) ListOrders(ctx context.Context, accountID uuid.UUID) ([]models.Order, error) {
	rows, _ := r.DB.Query(ctx, listOrders, accountID)
	orders, err := pgx.CollectRows(rows, rowToOrder)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	rows, _ = r.DB.Query(ctx, listOrderItems, accountID)
	items, err := pgx.CollectRows(rows, rowToOrderItem)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	byOrder := make(map[uuid.UUID][]models.OrderItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
	}

	return orders, nil
}

func rowToOrder(row pgx.CollectableRow) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.AccountID, &o.CreatedAt, &o.Total)
	return o, err
}

func rowToOrderItem(row pgx.CollectableRow) (models.OrderItem, error) {
	var i models.OrderItem
	err := row.Scan(&i.ID, &i.OrderID, &i.BookID, &i.Title, &i.UnitPrice, &i.Quantity)
	return i, err
}
