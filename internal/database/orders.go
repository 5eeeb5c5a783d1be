package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/TemirB/orders-api/internal/domain"

	"github.com/jackc/pgx/v5"
)

// ChunkSize bounds the number of records in one INSERT statement.
const ChunkSize = 1000

const orderColumns = "id, customer_id, order_date, status, total, created_at, updated_at"

var _ domain.OrderRepository = (*OrderRepository)(nil)

// insertParams is the number of bound parameters per inserted record.
const insertParams = 6

type OrderRepository struct {
	db        Client
	table     string
	chunkSize int
}

// NewOrderRepository accepts a plain or schema-qualified table name.
func NewOrderRepository(db Client, table string) *OrderRepository {
	if table == "" {
		table = "orders"
	}
	return &OrderRepository{
		db:        db,
		table:     pgx.Identifier(strings.Split(table, ".")).Sanitize(),
		chunkSize: ChunkSize,
	}
}

func (r *OrderRepository) CountTotal(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM "+r.table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

// FetchPage returns at most f.PageSize rows in store order. The page size is
// not capped here; callers bound it before the query is issued.
func (r *OrderRepository) FetchPage(ctx context.Context, f domain.Filter) ([]domain.Order, error) {
	if f.Page < 0 || f.PageSize < 0 {
		return nil, fmt.Errorf("%w: page and page_size must be non-negative", domain.ErrInvalidFilter)
	}

	sql, args := r.selectPage(f)
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, f.PageSize)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.OrderDate, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.OrderDate, o.CreatedAt, o.UpdatedAt = o.OrderDate.UTC(), o.CreatedAt.UTC(), o.UpdatedAt.UTC()
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) selectPage(f domain.Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		where = append(where, "order_date >= $"+strconv.Itoa(len(args)))
	}
	if f.EndDate != nil {
		args = append(args, domain.EndOfDay(*f.EndDate))
		where = append(where, "order_date <= $"+strconv.Itoa(len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}

	var b strings.Builder
	b.WriteString("SELECT " + orderColumns + " FROM " + r.table)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	// LIMIT and OFFSET come from validated integers, never from caller text.
	b.WriteString(" LIMIT " + strconv.Itoa(f.PageSize))
	b.WriteString(" OFFSET " + strconv.Itoa(f.Offset()))
	return b.String(), args
}

// SaveBatch writes all orders in one transaction, one INSERT per chunk.
// Any failure rolls back every chunk written so far. An empty batch is a
// no-op and never touches the store.
func (r *OrderRepository) SaveBatch(ctx context.Context, orders []domain.Order) (err error) {
	if len(orders) == 0 {
		return nil
	}
	for i := range orders {
		if err := orders[i].Validate(); err != nil {
			return fmt.Errorf("order %d: %w", i, err)
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	for start := 0; start < len(orders); start += r.chunkSize {
		end := min(start+r.chunkSize, len(orders))
		sql, args := r.insertChunk(orders[start:end])
		if _, err = tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert orders [%d:%d]: %w", start, end, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *OrderRepository) insertChunk(chunk []domain.Order) (string, []any) {
	args := make([]any, 0, len(chunk)*insertParams)

	var b strings.Builder
	b.WriteString("INSERT INTO " + r.table + " (customer_id, order_date, status, total, created_at, updated_at) VALUES ")
	for i, o := range chunk {
		if i > 0 {
			b.WriteByte(',')
		}
		n := i * insertParams
		fmt.Fprintf(&b, "($%d,$%d,$%d,$%d,$%d,$%d)", n+1, n+2, n+3, n+4, n+5, n+6)
		args = append(args, o.CustomerID, o.OrderDate, o.Status, o.Total, o.CreatedAt, o.UpdatedAt)
	}
	return b.String(), args
}
