package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"cinehub/internal/database"
	"cinehub/internal/models"

	"go.uber.org/zap"
)

// MemoryStore is an in-process Store with optimistic concurrency. Every
// document carries a version; a transaction commits only if every document
// it read is still at the version it saw, otherwise the attempt fails with
// database.ErrTxConflict and is retried.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[string]*memDoc
	policy database.RetryPolicy
	logger *zap.Logger
}

type memDoc struct {
	version int64
	value   interface{}
}

// NewMemoryStore creates an empty store
func NewMemoryStore(policy database.RetryPolicy, logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		docs:   make(map[string]*memDoc),
		policy: policy,
		logger: logger,
	}
}

// Provider names the implementation
func (s *MemoryStore) Provider() string { return "memory" }

// Ping always succeeds
func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

// RunInTx runs fn against a fresh snapshot, retrying on conflict
func (s *MemoryStore) RunInTx(ctx context.Context, fn TxFunc) error {
	return database.RunWithRetry(ctx, s.policy, s.logger, s.Provider(), func(ctx context.Context) error {
		tx := &memTx{store: s, reads: make(map[string]int64), writes: make(map[string]*memWrite)}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		return s.commit(tx)
	})
}

func (s *MemoryStore) commit(tx *memTx) error {
	if len(tx.writes) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, seen := range tx.reads {
		if s.versionLocked(key) != seen {
			return fmt.Errorf("%s: %w", key, database.ErrTxConflict)
		}
	}
	// blind writes still conflict with a concurrent writer of the same key
	for key, w := range tx.writes {
		if _, read := tx.reads[key]; !read && s.versionLocked(key) != w.baseVersion {
			return fmt.Errorf("%s: %w", key, database.ErrTxConflict)
		}
	}

	for key, w := range tx.writes {
		next := s.versionLocked(key) + 1
		if w.deleted {
			// tombstone keeps the version monotonic
			s.docs[key] = &memDoc{version: next}
			continue
		}
		s.docs[key] = &memDoc{version: next, value: w.value}
	}
	return nil
}

func (s *MemoryStore) versionLocked(key string) int64 {
	if doc, ok := s.docs[key]; ok {
		return doc.version
	}
	return 0
}

func (s *MemoryStore) snapshot(key string) (interface{}, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[key]
	if !ok {
		return nil, 0
	}
	return doc.value, doc.version
}

// scan returns live values under prefix, in key order
func (s *MemoryStore) scan(prefix string) []interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0)
	for key, doc := range s.docs {
		if doc.value != nil && strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	values := make([]interface{}, 0, len(keys))
	for _, key := range keys {
		values = append(values, s.docs[key].value)
	}
	return values
}

// ===============================
// QUERIES
// ===============================

// ListComments returns visible comments for an item, newest first
func (s *MemoryStore) ListComments(ctx context.Context, filter CommentFilter) ([]*models.Comment, error) {
	var out []*models.Comment
	for _, v := range s.scan(commentPrefix) {
		c := v.(*models.Comment)
		if filter.visible(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, filter.Offset, normalizeLimit(filter.Limit)), nil
}

// ListUserLists returns a user's lists, newest first
func (s *MemoryStore) ListUserLists(ctx context.Context, userID string) ([]*models.UserList, error) {
	var out []*models.UserList
	for _, v := range s.scan(listKey(userID, "")) {
		cp := *v.(*models.UserList)
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListListItems returns the items of a list, most recently added first
func (s *MemoryStore) ListListItems(ctx context.Context, listID string) ([]*models.UserListItem, error) {
	var out []*models.UserListItem
	for _, v := range s.scan(listItemKey(listID, "")) {
		cp := *v.(*models.UserListItem)
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out, nil
}

// ListInteractions returns a user's memberships in one collection, newest first
func (s *MemoryStore) ListInteractions(ctx context.Context, userID string, collection models.Collection, params models.PaginationParams) ([]*models.Interaction, error) {
	var out []*models.Interaction
	for _, v := range s.scan(interactionKey(userID, collection, "")) {
		cp := *v.(*models.Interaction)
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, params.Offset, normalizeLimit(params.Limit)), nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ===============================
// TRANSACTION
// ===============================

type memWrite struct {
	value       interface{}
	deleted     bool
	baseVersion int64
}

type memTx struct {
	store  *MemoryStore
	reads  map[string]int64
	writes map[string]*memWrite
}

func (t *memTx) get(key string) (interface{}, bool) {
	if w, ok := t.writes[key]; ok {
		return w.value, !w.deleted
	}
	value, version := t.store.snapshot(key)
	if _, seen := t.reads[key]; !seen {
		t.reads[key] = version
	}
	return value, value != nil
}

func (t *memTx) put(key string, value interface{}) {
	t.writes[key] = &memWrite{value: value, baseVersion: t.baseVersion(key)}
}

func (t *memTx) del(key string) {
	t.writes[key] = &memWrite{deleted: true, baseVersion: t.baseVersion(key)}
}

func (t *memTx) baseVersion(key string) int64 {
	if w, ok := t.writes[key]; ok {
		return w.baseVersion
	}
	if v, ok := t.reads[key]; ok {
		return v
	}
	_, version := t.store.snapshot(key)
	return version
}

const (
	itemStatsPrefix   = "item_stats/"
	interactionPrefix = "interactions/"
	userPrefix        = "users/"
	commentPrefix     = "comments/"
	listPrefix        = "lists/"
	listItemPrefix    = "list_items/"
)

// requireUser mirrors the user foreign keys of the SQL schema
func (t *memTx) requireUser(userID string) error {
	if _, ok := t.get(userPrefix + userID); !ok {
		return fmt.Errorf("user %q: %w", userID, ErrUnknownUser)
	}
	return nil
}

func interactionKey(userID string, collection models.Collection, itemID string) string {
	return interactionPrefix + userID + "/" + string(collection) + "/" + itemID
}

func listKey(userID, listID string) string {
	return listPrefix + userID + "/" + listID
}

func listItemKey(listID, itemID string) string {
	return listItemPrefix + listID + "/" + itemID
}

func (t *memTx) GetItemStats(ctx context.Context, itemID string) (*models.ItemStats, error) {
	v, ok := t.get(itemStatsPrefix + itemID)
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v.(*models.ItemStats)
	return &cp, nil
}

func (t *memTx) SaveItemStats(ctx context.Context, stats *models.ItemStats) error {
	cp := *stats
	t.put(itemStatsPrefix+stats.ItemID, &cp)
	return nil
}

func (t *memTx) GetInteraction(ctx context.Context, userID string, collection models.Collection, itemID string) (*models.Interaction, error) {
	v, ok := t.get(interactionKey(userID, collection, itemID))
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v.(*models.Interaction)
	return &cp, nil
}

func (t *memTx) PutInteraction(ctx context.Context, interaction *models.Interaction) error {
	if err := t.requireUser(interaction.UserID); err != nil {
		return err
	}
	cp := *interaction
	t.put(interactionKey(interaction.UserID, interaction.Collection, interaction.ItemID), &cp)
	return nil
}

func (t *memTx) DeleteInteraction(ctx context.Context, userID string, collection models.Collection, itemID string) error {
	t.del(interactionKey(userID, collection, itemID))
	return nil
}

func (t *memTx) GetUserProgress(ctx context.Context, userID string) (*models.UserProgress, error) {
	v, ok := t.get(userPrefix + userID)
	if !ok {
		return nil, ErrNotFound
	}
	return v.(*models.UserProgress).Clone(), nil
}

func (t *memTx) SaveUserProgress(ctx context.Context, progress *models.UserProgress) error {
	t.put(userPrefix+progress.UserID, progress.Clone())
	return nil
}

func (t *memTx) CreateComment(ctx context.Context, comment *models.Comment) error {
	key := commentPrefix + comment.ID
	if _, exists := t.get(key); exists {
		return fmt.Errorf("comment %s already exists", comment.ID)
	}
	if err := t.requireUser(comment.UserID); err != nil {
		return err
	}
	cp := *comment
	t.put(key, &cp)
	return nil
}

func (t *memTx) GetComment(ctx context.Context, commentID string) (*models.Comment, error) {
	v, ok := t.get(commentPrefix + commentID)
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v.(*models.Comment)
	return &cp, nil
}

func (t *memTx) UpdateCommentStatus(ctx context.Context, commentID string, status models.CommentStatus) error {
	comment, err := t.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	comment.Status = status
	t.put(commentPrefix+commentID, comment)
	return nil
}

func (t *memTx) GetList(ctx context.Context, userID, listID string) (*models.UserList, error) {
	v, ok := t.get(listKey(userID, listID))
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v.(*models.UserList)
	return &cp, nil
}

func (t *memTx) SaveList(ctx context.Context, list *models.UserList) error {
	if err := t.requireUser(list.UserID); err != nil {
		return err
	}
	cp := *list
	t.put(listKey(list.UserID, list.ID), &cp)
	return nil
}

func (t *memTx) GetListItem(ctx context.Context, listID, itemID string) (*models.UserListItem, error) {
	v, ok := t.get(listItemKey(listID, itemID))
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v.(*models.UserListItem)
	return &cp, nil
}

func (t *memTx) PutListItem(ctx context.Context, item *models.UserListItem) error {
	cp := *item
	t.put(listItemKey(item.ListID, item.ItemID), &cp)
	return nil
}
