package bom

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-bom/internal/platform/db"
	"github.com/odyssey-erp/odyssey-bom/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bom/internal/shared"
)

// ErrConcurrentUpdate is returned when a competing transaction wins a serialization race.
var ErrConcurrentUpdate = httpx.NewError(httpx.ErrConflict, "concurrent_update", "bom: concurrent update, retry the request")

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists BOM edges in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepo struct {
	q querier
}

// WithTx executes the callback inside a read-committed transaction. Each
// statement after LockGraph sees edges committed by the previous lock holder.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	err := db.WithTxOptions(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{q: tx})
	})
	if db.IsCode(err, db.CodeSerialization) {
		return fmt.Errorf("%w: %v", ErrConcurrentUpdate, err)
	}
	return err
}

// ItemExists reports whether the item exists.
func (r *Repository) ItemExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return itemExists(ctx, r.pool, id, false)
}

// ListChildren returns direct edges of parentID ordered by sequence, then insertion order.
func (r *Repository) ListChildren(ctx context.Context, parentID uuid.UUID) ([]Line, error) {
	return listChildren(ctx, r.pool, parentID)
}

// Edges streams every edge as (parent, component) pairs.
func (r *Repository) Edges(ctx context.Context, fn func(parentID, componentID uuid.UUID) error) error {
	rows, err := r.pool.Query(ctx, `SELECT parent_item_id, component_item_id FROM bom_components ORDER BY parent_item_id, sequence, ordinal`)
	if err != nil {
		return db.Classify(err)
	}
	defer rows.Close()
	for rows.Next() {
		var parent, component uuid.UUID
		if err := rows.Scan(&parent, &component); err != nil {
			return err
		}
		if err := fn(parent, component); err != nil {
			return err
		}
	}
	return rows.Err()
}

// DiscontinuedEdges returns edges whose component item is discontinued.
func (r *Repository) DiscontinuedEdges(ctx context.Context) ([]EdgeRef, error) {
	rows, err := r.pool.Query(ctx, `SELECT bc.id, bc.parent_item_id, bc.component_item_id
FROM bom_components bc
JOIN items i ON i.id = bc.component_item_id
WHERE i.status = 'discontinued'
ORDER BY bc.parent_item_id, bc.sequence, bc.ordinal`)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()
	refs := []EdgeRef{}
	for rows.Next() {
		var ref EdgeRef
		if err := rows.Scan(&ref.ID, &ref.ParentItemID, &ref.ComponentItemID); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (t *txRepo) LockGraph(ctx context.Context) error {
	if _, err := t.q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, shared.BOMGraphLockKey); err != nil {
		return db.Classify(err)
	}
	return nil
}

func (t *txRepo) LockItem(ctx context.Context, id uuid.UUID) (bool, error) {
	return itemExists(ctx, t.q, id, true)
}

func (t *txRepo) ItemExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return itemExists(ctx, t.q, id, false)
}

func (t *txRepo) EdgeExists(ctx context.Context, parentID, componentID uuid.UUID) (bool, error) {
	var exists bool
	err := t.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bom_components WHERE parent_item_id = $1 AND component_item_id = $2)`, parentID, componentID).Scan(&exists)
	if err != nil {
		return false, db.Classify(err)
	}
	return exists, nil
}

func (t *txRepo) ChildItemIDs(ctx context.Context, parentID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := t.q.Query(ctx, `SELECT component_item_id FROM bom_components WHERE parent_item_id = $1`, parentID)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (t *txRepo) NextSequence(ctx context.Context, parentID uuid.UUID) (int, error) {
	var seq int
	err := t.q.QueryRow(ctx, `SELECT COALESCE(MAX(sequence), 0) + 1 FROM bom_components WHERE parent_item_id = $1`, parentID).Scan(&seq)
	if err != nil {
		return 0, db.Classify(err)
	}
	return seq, nil
}

func (t *txRepo) InsertComponent(ctx context.Context, c Component) (Component, error) {
	err := t.q.QueryRow(ctx, `INSERT INTO bom_components (parent_item_id, component_item_id, quantity, unit, sequence, notes)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`,
		c.ParentItemID, c.ComponentItemID, c.Quantity, c.Unit, c.Sequence, c.Notes,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return Component{}, mapWriteError(err)
	}
	return c, nil
}

func (t *txRepo) GetComponentForUpdate(ctx context.Context, id uuid.UUID) (Component, error) {
	var c Component
	err := t.q.QueryRow(ctx, `SELECT id, parent_item_id, component_item_id, quantity, unit, sequence, notes, created_at
FROM bom_components WHERE id = $1 FOR UPDATE`, id).
		Scan(&c.ID, &c.ParentItemID, &c.ComponentItemID, &c.Quantity, &c.Unit, &c.Sequence, &c.Notes, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Component{}, fmt.Errorf("%w: %s", ErrEdgeNotFound, id)
	}
	if err != nil {
		return Component{}, db.Classify(err)
	}
	return c, nil
}

func (t *txRepo) UpdateComponent(ctx context.Context, c Component) (Component, error) {
	tag, err := t.q.Exec(ctx, `UPDATE bom_components SET quantity = $2, unit = $3, notes = $4, sequence = $5 WHERE id = $1`,
		c.ID, c.Quantity, c.Unit, c.Notes, c.Sequence)
	if err != nil {
		return Component{}, mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return Component{}, fmt.Errorf("%w: %s", ErrEdgeNotFound, c.ID)
	}
	return c, nil
}

func (t *txRepo) DeleteComponent(ctx context.Context, id uuid.UUID) error {
	tag, err := t.q.Exec(ctx, `DELETE FROM bom_components WHERE id = $1`, id)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrEdgeNotFound, id)
	}
	return nil
}

func itemExists(ctx context.Context, q querier, id uuid.UUID, lock bool) (bool, error) {
	query := `SELECT 1 FROM items WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	var one int
	err := q.QueryRow(ctx, query, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, db.Classify(err)
	}
	return true, nil
}

func listChildren(ctx context.Context, q querier, parentID uuid.UUID) ([]Line, error) {
	rows, err := q.Query(ctx, `SELECT b.id, b.parent_item_id, b.component_item_id, b.quantity, b.unit, b.sequence, b.notes, b.created_at,
       i.sku, i.name, i.description, i.item_type, i.uom, i.unit_cost
FROM bom_components b
JOIN items i ON i.id = b.component_item_id
WHERE b.parent_item_id = $1
ORDER BY b.sequence ASC, b.ordinal ASC`, parentID)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	lines := []Line{}
	for rows.Next() {
		var l Line
		if err := rows.Scan(
			&l.ID, &l.ParentItemID, &l.ComponentItemID, &l.Quantity, &l.Unit, &l.Sequence, &l.Notes, &l.CreatedAt,
			&l.Item.SKU, &l.Item.Name, &l.Item.Description, &l.Item.ItemType, &l.Item.UOM, &l.Item.UnitCost,
		); err != nil {
			return nil, err
		}
		l.Item.ID = l.ComponentItemID
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func mapWriteError(err error) error {
	switch {
	case db.IsCode(err, db.CodeUniqueViolation):
		return fmt.Errorf("%w: %v", ErrDuplicateComponent, err)
	case db.IsCode(err, db.CodeCheckViolation) && db.ConstraintName(err) == "bom_components_no_self_ref":
		return ErrSelfReference
	case db.IsCode(err, db.CodeCheckViolation):
		return fmt.Errorf("%w: %v", ErrInvalidQuantity, err)
	case db.IsCode(err, db.CodeForeignKeyViolation):
		return fmt.Errorf("%w: %v", ErrComponentNotFound, err)
	default:
		return db.Classify(err)
	}
}
