package items

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-bom/internal/platform/db"
)

// Repository persists items.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Item, int, error)
	Get(ctx context.Context, id uuid.UUID) (Item, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, item Item) (Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const itemColumns = `id, sku, name, description, category_id, item_type, uom, unit_cost, status, created_at, updated_at`

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.SKU, &it.Name, &it.Description, &it.CategoryID, &it.ItemType, &it.UOM, &it.UnitCost, &it.Status, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

func whereClause(filters ListFilters) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if filters.Status != "" {
		add("status = ?", filters.Status)
	}
	if filters.ItemType != "" {
		add("item_type = ?", filters.ItemType)
	}
	if filters.CategoryID != nil {
		add("category_id = ?", *filters.CategoryID)
	}
	if filters.Search != "" {
		add("(name ILIKE ? OR sku ILIKE ?)", "%"+filters.Search+"%")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	where, args := whereClause(filters)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM items`+where, args...).Scan(&total); err != nil {
		return nil, 0, db.Classify(err)
	}

	query := `SELECT ` + itemColumns + ` FROM items` + where +
		` ORDER BY created_at ASC, id ASC LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, filters.Limit, filters.Skip)...)
	if err != nil {
		return nil, 0, db.Classify(err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Item{}, db.Classify(err)
	}
	return it, nil
}

func (r *repository) Create(ctx context.Context, item Item) (Item, error) {
	created, err := scanItem(r.pool.QueryRow(ctx, `INSERT INTO items (sku, name, description, category_id, item_type, uom, unit_cost, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+itemColumns,
		item.SKU, item.Name, item.Description, item.CategoryID, item.ItemType, item.UOM, item.UnitCost, item.Status))
	if err != nil {
		return Item{}, mapWriteError(err)
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, item Item) (Item, error) {
	updated, err := scanItem(r.pool.QueryRow(ctx, `UPDATE items
SET sku = $2, name = $3, description = $4, category_id = $5, item_type = $6, uom = $7, unit_cost = $8, status = $9, updated_at = NOW()
WHERE id = $1
RETURNING `+itemColumns,
		item.ID, item.SKU, item.Name, item.Description, item.CategoryID, item.ItemType, item.UOM, item.UnitCost, item.Status))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, item.ID)
	}
	if err != nil {
		return Item{}, mapWriteError(err)
	}
	return updated, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var hasBOM, inUse bool
		err := tx.QueryRow(ctx, `SELECT
  EXISTS (SELECT 1 FROM bom_components WHERE parent_item_id = $1),
  EXISTS (SELECT 1 FROM bom_components WHERE component_item_id = $1)`, id).Scan(&hasBOM, &inUse)
		if err != nil {
			return db.Classify(err)
		}
		if hasBOM {
			return ErrHasBOM
		}
		if inUse {
			return ErrInUse
		}
		tag, err := tx.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
		if err != nil {
			if db.IsCode(err, db.CodeForeignKeyViolation) {
				return fmt.Errorf("%w: %v", ErrInUse, err)
			}
			return db.Classify(err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil
	})
}

func mapWriteError(err error) error {
	if db.IsCode(err, db.CodeUniqueViolation) {
		return fmt.Errorf("%w: %v", ErrDuplicateSKU, err)
	}
	return db.Classify(err)
}
