package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rl1809/flash-item/internal/core/domain"
)

const itemColumns = `id, activity_id, title, sub_title, description, original_price, flash_price,
		initial_stock, available_stock, status, start_time, end_time, created_at, updated_at`

// SQLAdapter stores flash items in a relational database and serves as both the item
// and the inventory repository.
type SQLAdapter struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLAdapter(db *sql.DB, dialect Dialect) *SQLAdapter {
	return &SQLAdapter{db: db, dialect: dialect}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (domain.FlashItem, error) {
	var item domain.FlashItem
	err := row.Scan(
		&item.ID, &item.ActivityID, &item.Title, &item.SubTitle, &item.Description,
		&item.OriginalPrice, &item.FlashPrice, &item.InitialStock, &item.AvailableStock,
		&item.Status, &item.StartTime, &item.EndTime, &item.CreatedAt, &item.UpdatedAt,
	)
	return item, err
}

func (s *SQLAdapter) FindByID(ctx context.Context, itemID string) (*domain.FlashItem, error) {
	row := s.db.QueryRowContext(ctx,
		s.dialect.rebind(`SELECT `+itemColumns+` FROM flash_items WHERE id = ?`), itemID)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query flash item: %w", err)
	}
	return &item, nil
}

func (s *SQLAdapter) Save(ctx context.Context, item *domain.FlashItem) error {
	_, err := s.db.ExecContext(ctx, s.dialect.rebind(s.dialect.upsert),
		item.ID, item.ActivityID, item.Title, item.SubTitle, item.Description,
		item.OriginalPrice, item.FlashPrice, item.InitialStock, item.AvailableStock,
		string(item.Status), item.StartTime.UTC(), item.EndTime.UTC(), item.CreatedAt.UTC(), item.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert flash item: %w", err)
	}
	return nil
}

func (s *SQLAdapter) FindByCondition(ctx context.Context, query domain.ItemQuery) ([]domain.FlashItem, error) {
	where, args := s.where(query)
	args = append(args, query.Limit(), query.Offset())

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(`
		SELECT `+itemColumns+` FROM flash_items`+where+`
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`), args...)
	if err != nil {
		return nil, fmt.Errorf("query flash items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.FlashItem, 0, query.Limit())
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flash item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over flash items: %w", err)
	}
	return items, nil
}

func (s *SQLAdapter) CountByCondition(ctx context.Context, query domain.ItemQuery) (int, error) {
	where, args := s.where(query)

	var total int
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(`SELECT COUNT(*) FROM flash_items`+where), args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count flash items: %w", err)
	}
	return total, nil
}

func (s *SQLAdapter) where(query domain.ItemQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if query.ActivityID != "" {
		conds = append(conds, "activity_id = ?")
		args = append(args, query.ActivityID)
	}
	if query.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(query.Status))
	}
	if query.Keyword != "" {
		conds = append(conds, "title "+s.dialect.likeOp+" ?")
		args = append(args, "%"+query.Keyword+"%")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// DecreaseIfAvailable decrements in a single conditional UPDATE, so concurrent callers
// can never take more than what is left.
func (s *SQLAdapter) DecreaseIfAvailable(ctx context.Context, itemID string, quantity int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, s.dialect.rebind(`
		UPDATE flash_items
		SET available_stock = available_stock - ?, updated_at = ?
		WHERE id = ? AND available_stock >= ?`),
		quantity, time.Now().UTC(), itemID, quantity,
	)
	if err != nil {
		return false, fmt.Errorf("decrease stock: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("can't get affected rows: %w", err)
	}
	return rows == 1, nil
}

func (s *SQLAdapter) Increase(ctx context.Context, itemID string, quantity int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, s.dialect.rebind(`
		UPDATE flash_items
		SET available_stock = available_stock + ?, updated_at = ?
		WHERE id = ?`),
		quantity, time.Now().UTC(), itemID,
	)
	if err != nil {
		return false, fmt.Errorf("increase stock: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("can't get affected rows: %w", err)
	}
	return rows == 1, nil
}

// ListOnlineStock returns the available stock of every ONLINE item, used to seed an
// external stock counter on startup.
func (s *SQLAdapter) ListOnlineStock(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(
		`SELECT id, available_stock FROM flash_items WHERE status = ?`), string(domain.ItemStatusOnline))
	if err != nil {
		return nil, fmt.Errorf("query online stock: %w", err)
	}
	defer rows.Close()

	stock := make(map[string]int64)
	for rows.Next() {
		var (
			id  string
			qty int64
		)
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("scan online stock: %w", err)
		}
		stock[id] = qty
	}
	return stock, rows.Err()
}
