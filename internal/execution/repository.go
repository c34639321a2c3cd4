package execution

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/trendday/internal/contracts"
)

// Repository handles order persistence
// ⭐ SSOT: 주문 저장/조회는 여기서만 (전송은 외부 라우터 담당)
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new execution repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const upsertOrderSQL = `
	INSERT INTO execution.orders (
		order_id, parent_id, symbol, session_date, account, order_ref,
		action, total_quantity, exchange, order_type, tif, status, created_at, updated_at
	) VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
	ON CONFLICT (order_id) DO UPDATE SET
		status = EXCLUDED.status,
		updated_at = EXCLUDED.updated_at
`

const sessionOrdersExistSQL = `
	SELECT EXISTS (
		SELECT 1 FROM execution.orders
		WHERE session_date = $1 AND order_ref = $2
	)
`

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const uniqueViolation = "23505"

// sessionRef identifies one strategy's orders for one session
type sessionRef struct {
	Session  time.Time
	OrderRef string
}

// sessionRefs returns the distinct (session, order_ref) pairs, sorted
func sessionRefs(orders []contracts.Order) []sessionRef {
	seen := make(map[string]bool)
	refs := make([]sessionRef, 0, 1)
	for _, o := range orders {
		key := contracts.SessionKey(o.Session) + "|" + o.OrderRef
		if seen[key] {
			continue
		}
		seen[key] = true
		refs = append(refs, sessionRef{Session: o.Session, OrderRef: o.OrderRef})
	}
	sort.Slice(refs, func(i, j int) bool {
		if !refs[i].Session.Equal(refs[j].Session) {
			return refs[i].Session.Before(refs[j].Session)
		}
		return refs[i].OrderRef < refs[j].OrderRef
	})
	return refs
}

// SaveOrders saves orders in one transaction.
// 세션당 1회: 같은 (session, order_ref) 주문이 있으면 ErrSessionOrdersExist
func (r *Repository) SaveOrders(ctx context.Context, orders []contracts.Order) error {
	if len(orders) == 0 {
		return nil
	}

	// Begin transaction
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, ref := range sessionRefs(orders) {
		var exists bool
		if err := tx.QueryRow(ctx, sessionOrdersExistSQL, ref.Session, ref.OrderRef).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check session orders: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: %s %s", contracts.ErrSessionOrdersExist, ref.OrderRef, contracts.SessionKey(ref.Session))
		}
	}

	batch := &pgx.Batch{}
	for _, o := range orders {
		status := o.Status
		if status == "" {
			status = contracts.StatusPending
		}
		batch.Queue(upsertOrderSQL,
			o.OrderID, o.ParentID, o.Symbol, o.Session, o.Account, o.OrderRef,
			string(o.Action), o.TotalQuantity, o.Exchange, string(o.OrderType), string(o.Tif),
			string(status), o.CreatedAt,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		// 동시 실행은 uq_orders_session_entry 인덱스에서 걸림
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", contracts.ErrSessionOrdersExist, pgErr.ConstraintName)
		}
		return fmt.Errorf("failed to save orders: %w", err)
	}

	// Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateOrderStatus updates order status
func (r *Repository) UpdateOrderStatus(ctx context.Context, orderID string, status contracts.Status) error {
	query := `
		UPDATE execution.orders
		SET status = $1, updated_at = $2
		WHERE order_id = $3
	`

	tag, err := r.pool.Exec(ctx, query, string(status), time.Now(), orderID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order not found: %s", orderID)
	}

	return nil
}

// GetOrdersBySession retrieves orders for one session, entries before exits
func (r *Repository) GetOrdersBySession(ctx context.Context, session time.Time) ([]contracts.Order, error) {
	query := `
		SELECT order_id, COALESCE(parent_id, ''), symbol, session_date, account, order_ref,
		       action, total_quantity, exchange, order_type, tif, status, created_at
		FROM execution.orders
		WHERE session_date = $1
		ORDER BY (parent_id IS NOT NULL), created_at ASC, symbol ASC
	`

	rows, err := r.pool.Query(ctx, query, session)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]contracts.Order, 0)

	for rows.Next() {
		var (
			o                                    contracts.Order
			action, orderType, tif, statusString string
		)
		err := rows.Scan(
			&o.OrderID, &o.ParentID, &o.Symbol, &o.Session, &o.Account, &o.OrderRef,
			&action, &o.TotalQuantity, &o.Exchange, &orderType, &tif, &statusString, &o.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.Action = contracts.OrderAction(action)
		o.OrderType = contracts.OrderType(orderType)
		o.Tif = contracts.TimeInForce(tif)
		o.Status = contracts.Status(statusString)
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return orders, nil
}
