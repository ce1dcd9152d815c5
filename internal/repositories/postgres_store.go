package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cinehub/internal/database"
	"cinehub/internal/models"

	"github.com/lib/pq"
)

// PostgresStore implements Store on SERIALIZABLE Postgres transactions
type PostgresStore struct {
	*BaseRepository
	db *database.Manager
}

// NewPostgresStore creates a Postgres-backed store
func NewPostgresStore(db *database.Manager, base *BaseRepository) *PostgresStore {
	return &PostgresStore{BaseRepository: base, db: db}
}

// Provider names the implementation
func (s *PostgresStore) Provider() string { return "postgres" }

// Ping checks connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.DB().PingContext(ctx)
}

// RunInTx runs fn in a serializable transaction, retrying on conflict
func (s *PostgresStore) RunInTx(ctx context.Context, fn TxFunc) error {
	return s.db.RunSerializable(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, &pgTx{base: s.BaseRepository, tx: tx})
	})
}

// ===============================
// QUERIES
// ===============================

const commentColumns = `id, item_id, media_type, user_id, user_name, user_avatar_url, content, status, spoiler, created_at`

// ListComments returns published comments for an item plus the viewer's pending ones, newest first
func (s *PostgresStore) ListComments(ctx context.Context, filter CommentFilter) ([]*models.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE item_id = $1
		  AND ($2 = '' OR media_type = $2)
		  AND (status = 1 OR ($3 <> '' AND user_id = $3 AND status = 0))
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5`

	rows, err := s.QueryContext(ctx, s.db.DB(), query,
		filter.ItemID, string(filter.MediaType), filter.ViewerID, normalizeLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

// ListUserLists returns a user's lists, newest first
func (s *PostgresStore) ListUserLists(ctx context.Context, userID string) ([]*models.UserList, error) {
	rows, err := s.QueryContext(ctx, s.db.DB(), `
		SELECT id, user_id, name, item_count, created_at
		FROM user_lists
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user lists: %w", err)
	}
	defer rows.Close()

	var lists []*models.UserList
	for rows.Next() {
		list := &models.UserList{}
		if err := rows.Scan(&list.ID, &list.UserID, &list.Name, &list.ItemCount, &list.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user list: %w", err)
		}
		lists = append(lists, list)
	}
	return lists, rows.Err()
}

// ListListItems returns the items of a list, most recently added first
func (s *PostgresStore) ListListItems(ctx context.Context, listID string) ([]*models.UserListItem, error) {
	rows, err := s.QueryContext(ctx, s.db.DB(), `
		SELECT list_id, item_id, media_type, data, added_at
		FROM user_list_items
		WHERE list_id = $1
		ORDER BY added_at DESC`, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to list list items: %w", err)
	}
	defer rows.Close()

	var items []*models.UserListItem
	for rows.Next() {
		item := &models.UserListItem{}
		if err := rows.Scan(&item.ListID, &item.ItemID, &item.MediaType, &item.Metadata, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan list item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListInteractions returns a user's memberships in one collection, newest first
func (s *PostgresStore) ListInteractions(ctx context.Context, userID string, collection models.Collection, params models.PaginationParams) ([]*models.Interaction, error) {
	rows, err := s.QueryContext(ctx, s.db.DB(), `
		SELECT user_id, collection, item_id, data, created_at
		FROM user_interactions
		WHERE user_id = $1 AND collection = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`, userID, string(collection), normalizeLimit(params.Limit), params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	var out []*models.Interaction
	for rows.Next() {
		in := &models.Interaction{}
		if err := rows.Scan(&in.UserID, &in.Collection, &in.ItemID, &in.Metadata, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanComment(row rowScanner) (*models.Comment, error) {
	c := &models.Comment{}
	err := row.Scan(&c.ID, &c.ItemID, &c.MediaType, &c.UserID, &c.UserName, &c.UserAvatarURL,
		&c.Content, &c.Status, &c.Spoiler, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan comment: %w", err)
	}
	return c, nil
}

// ===============================
// TRANSACTION
// ===============================

type pgTx struct {
	base *BaseRepository
	tx   *sql.Tx
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// unknownUser turns a foreign key violation on user_id into ErrUnknownUser
func unknownUser(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return fmt.Errorf("%s: %w", pqErr.Constraint, ErrUnknownUser)
	}
	return err
}

func (t *pgTx) GetItemStats(ctx context.Context, itemID string) (*models.ItemStats, error) {
	stats := &models.ItemStats{}
	err := t.base.QueryRowContext(ctx, t.tx, `
		SELECT item_id, like_count, movie_id, title, original_title, poster_path, updated_at
		FROM item_stats WHERE item_id = $1`, itemID,
	).Scan(&stats.ItemID, &stats.LikeCount, &stats.MovieID, &stats.Title, &stats.OriginalTitle, &stats.PosterPath, &stats.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return stats, nil
}

func (t *pgTx) SaveItemStats(ctx context.Context, stats *models.ItemStats) error {
	_, err := t.base.ExecContext(ctx, t.tx, `
		INSERT INTO item_stats (item_id, like_count, movie_id, title, original_title, poster_path, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (item_id) DO UPDATE SET
			like_count = EXCLUDED.like_count,
			movie_id = COALESCE(EXCLUDED.movie_id, item_stats.movie_id),
			title = COALESCE(NULLIF(EXCLUDED.title, ''), item_stats.title),
			original_title = COALESCE(NULLIF(EXCLUDED.original_title, ''), item_stats.original_title),
			poster_path = COALESCE(NULLIF(EXCLUDED.poster_path, ''), item_stats.poster_path),
			updated_at = EXCLUDED.updated_at`,
		stats.ItemID, stats.LikeCount, stats.MovieID, stats.Title, stats.OriginalTitle, stats.PosterPath, stats.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save item stats: %w", err)
	}
	return nil
}

func (t *pgTx) GetInteraction(ctx context.Context, userID string, collection models.Collection, itemID string) (*models.Interaction, error) {
	in := &models.Interaction{}
	err := t.base.QueryRowContext(ctx, t.tx, `
		SELECT user_id, collection, item_id, data, created_at
		FROM user_interactions
		WHERE user_id = $1 AND collection = $2 AND item_id = $3`, userID, string(collection), itemID,
	).Scan(&in.UserID, &in.Collection, &in.ItemID, &in.Metadata, &in.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return in, nil
}

func (t *pgTx) PutInteraction(ctx context.Context, in *models.Interaction) error {
	_, err := t.base.ExecContext(ctx, t.tx, `
		INSERT INTO user_interactions (user_id, collection, item_id, data, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, collection, item_id) DO UPDATE SET data = EXCLUDED.data`,
		in.UserID, string(in.Collection), in.ItemID, in.Metadata, in.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to put interaction: %w", unknownUser(err))
	}
	return nil
}

func (t *pgTx) DeleteInteraction(ctx context.Context, userID string, collection models.Collection, itemID string) error {
	_, err := t.base.ExecContext(ctx, t.tx, `
		DELETE FROM user_interactions WHERE user_id = $1 AND collection = $2 AND item_id = $3`,
		userID, string(collection), itemID)
	if err != nil {
		return fmt.Errorf("failed to delete interaction: %w", err)
	}
	return nil
}

func (t *pgTx) GetUserProgress(ctx context.Context, userID string) (*models.UserProgress, error) {
	p := &models.UserProgress{}
	err := t.base.QueryRowContext(ctx, t.tx, `
		SELECT id, nickname, photo_url, registered_at, stats, earned_badges, updated_at
		FROM users WHERE id = $1`, userID,
	).Scan(&p.UserID, &p.Nickname, &p.PhotoURL, &p.RegisteredAt, &p.Stats, &p.EarnedBadges, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (t *pgTx) SaveUserProgress(ctx context.Context, p *models.UserProgress) error {
	_, err := t.base.ExecContext(ctx, t.tx, `
		INSERT INTO users (id, nickname, photo_url, registered_at, stats, earned_badges, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			nickname = EXCLUDED.nickname,
			photo_url = EXCLUDED.photo_url,
			stats = EXCLUDED.stats,
			earned_badges = EXCLUDED.earned_badges,
			updated_at = EXCLUDED.updated_at`,
		p.UserID, p.Nickname, p.PhotoURL, p.RegisteredAt, p.Stats, p.EarnedBadges, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save user progress: %w", err)
	}
	return nil
}

func (t *pgTx) CreateComment(ctx context.Context, c *models.Comment) error {
	_, err := t.base.ExecContext(ctx, t.tx, `
		INSERT INTO comments (`+commentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.ItemID, string(c.MediaType), c.UserID, c.UserName, c.UserAvatarURL,
		c.Content, int16(c.Status), c.Spoiler, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", unknownUser(err))
	}
	return nil
}

func (t *pgTx) GetComment(ctx context.Context, commentID string) (*models.Comment, error) {
	row := t.base.QueryRowContext(ctx, t.tx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, commentID)
	return scanComment(row)
}

func (t *pgTx) UpdateCommentStatus(ctx context.Context, commentID string, status models.CommentStatus) error {
	result, err := t.base.ExecContext(ctx, t.tx, `UPDATE comments SET status = $2 WHERE id = $1`, commentID, int16(status))
	if err != nil {
		return fmt.Errorf("failed to update comment status: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *pgTx) GetList(ctx context.Context, userID, listID string) (*models.UserList, error) {
	list := &models.UserList{}
	err := t.base.QueryRowContext(ctx, t.tx, `
		SELECT id, user_id, name, item_count, created_at
		FROM user_lists WHERE id = $1 AND user_id = $2`, listID, userID,
	).Scan(&list.ID, &list.UserID, &list.Name, &list.ItemCount, &list.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return list, nil
}

func (t *pgTx) SaveList(ctx context.Context, list *models.UserList) error {
	_, err := t.base.ExecContext(ctx, t.tx, `
		INSERT INTO user_lists (id, user_id, name, item_count, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, item_count = EXCLUDED.item_count`,
		list.ID, list.UserID, list.Name, list.ItemCount, list.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save list: %w", unknownUser(err))
	}
	return nil
}

func (t *pgTx) GetListItem(ctx context.Context, listID, itemID string) (*models.UserListItem, error) {
	item := &models.UserListItem{}
	err := t.base.QueryRowContext(ctx, t.tx, `
		SELECT list_id, item_id, media_type, data, added_at
		FROM user_list_items WHERE list_id = $1 AND item_id = $2`, listID, itemID,
	).Scan(&item.ListID, &item.ItemID, &item.MediaType, &item.Metadata, &item.AddedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

func (t *pgTx) PutListItem(ctx context.Context, item *models.UserListItem) error {
	_, err := t.base.ExecContext(ctx, t.tx, `
		INSERT INTO user_list_items (list_id, item_id, media_type, data, added_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (list_id, item_id) DO UPDATE SET data = EXCLUDED.data, added_at = EXCLUDED.added_at`,
		item.ListID, item.ItemID, string(item.MediaType), item.Metadata, item.AddedAt)
	if err != nil {
		return fmt.Errorf("failed to put list item: %w", err)
	}
	return nil
}

// compile-time checks
var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MemoryStore)(nil)
	_ Tx    = (*pgTx)(nil)
	_ Tx    = (*memTx)(nil)
)
