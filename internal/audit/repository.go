package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-bom/internal/platform/db"
)

// PGRepository reads audit_logs through pgx.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const timelineQuery = `SELECT occurred_at, actor_id, action, entity, entity_id, meta
FROM audit_logs
WHERE ($1 = '' OR entity_id = $1 OR meta->>'parent_item_id' = $1)
  AND ($2::timestamptz IS NULL OR occurred_at >= $2)
  AND ($3::timestamptz IS NULL OR occurred_at < $3)
  AND ($4 = '' OR actor_id = $4)
  AND ($5 = '' OR action = $5)
ORDER BY occurred_at DESC, id DESC
OFFSET $6 LIMIT $7`

// TimelineWindow returns one page of rows, newest first.
func (r *PGRepository) TimelineWindow(ctx context.Context, q WindowQuery) ([]TimelineRow, error) {
	rows, err := r.pool.Query(ctx, timelineQuery, q.ItemID, q.From, q.To, q.Actor, q.Action, q.Offset, q.Limit)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var out []TimelineRow
	for rows.Next() {
		var (
			row  TimelineRow
			meta []byte
		)
		if err := rows.Scan(&row.At, &row.Actor, &row.Action, &row.Entity, &row.EntityID, &meta); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &row.Meta); err != nil {
				return nil, err
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
