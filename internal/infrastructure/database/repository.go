package database

import (
	"context"
	"fmt"
	"log/slog"

	"portals-watcher/internal/domain"
)

// --- WatchRepository ---

type WatchRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewWatchRepository(db *DB, logger *slog.Logger) *WatchRepository {
	return &WatchRepository{db: db, logger: logger}
}

// Create сохраняет подписку. Повторный (user_id, collection, model)
// перезаписывает порог вместо ошибки - так требует контракт API.
func (r *WatchRepository) Create(ctx context.Context, w *domain.Watch) error {
	query := `
		INSERT INTO watches (user_id, collection, model, threshold_pct, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, collection, model)
		DO UPDATE SET threshold_pct = EXCLUDED.threshold_pct
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx, query,
		w.UserID, w.Collection, w.Model, w.ThresholdPct,
	).Scan(&w.ID)

	if err != nil {
		return fmt.Errorf("failed to create watch: %w", err)
	}
	return nil
}

func (r *WatchRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Watch, error) {
	query := `
		SELECT id, user_id, collection, model, threshold_pct, created_at
		FROM watches
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list watches: %w", err)
	}
	defer rows.Close()

	var watches []domain.Watch
	for rows.Next() {
		var w domain.Watch
		if err := rows.Scan(&w.ID, &w.UserID, &w.Collection, &w.Model, &w.ThresholdPct, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan row error: %w", err)
		}
		watches = append(watches, w)
	}
	return watches, rows.Err()
}

func (r *WatchRepository) Delete(ctx context.Context, id, userID int64) error {
	query := `DELETE FROM watches WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete watch: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrWatchNotFound
	}
	return nil
}

// FindWatchers возвращает подписчиков пары (коллекция, модель) вместе
// с чатом доставки. INNER JOIN: подписка без привязки молча выпадает.
func (r *WatchRepository) FindWatchers(ctx context.Context, collection, model string) ([]domain.Watcher, error) {
	query := `
		SELECT w.user_id, u.chat_id, w.threshold_pct
		FROM watches w
		JOIN users u ON u.user_id = w.user_id
		WHERE w.collection = $1 AND w.model = $2
	`

	rows, err := r.db.QueryContext(ctx, query, collection, model)
	if err != nil {
		return nil, fmt.Errorf("failed to find watchers: %w", err)
	}
	defer rows.Close()

	var watchers []domain.Watcher
	for rows.Next() {
		var w domain.Watcher
		if err := rows.Scan(&w.UserID, &w.ChatID, &w.ThresholdPct); err != nil {
			return nil, fmt.Errorf("scan row error: %w", err)
		}
		watchers = append(watchers, w)
	}
	return watchers, rows.Err()
}

// --- UserRepository ---

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert регистрирует привязку user -> chat. Повторный /start
// обновляет chat_id, запись никогда не удаляется.
func (r *UserRepository) Upsert(ctx context.Context, userID, chatID int64) error {
	query := `
		INSERT INTO users (user_id, chat_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET chat_id = EXCLUDED.chat_id
	`

	if _, err := r.db.ExecContext(ctx, query, userID, chatID); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}
