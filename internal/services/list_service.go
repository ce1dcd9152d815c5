package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cinehub/internal/models"
	"cinehub/internal/repositories"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// listService implements ListService
type listService struct {
	*coordinator
}

// NewListService creates a new custom list service
func NewListService(deps *Dependencies) ListService {
	return &listService{coordinator: newCoordinator(deps)}
}

// CreateList creates an empty named list
func (s *listService) CreateList(ctx context.Context, req *CreateListRequest) (*models.UserList, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, NewPersistenceError(fmt.Errorf("failed to generate list id: %w", err))
	}

	var list *models.UserList
	err = s.runInTx(ctx, "create_list", func(ctx context.Context, tx repositories.Tx) error {
		now := s.now().UTC()
		if err := s.ensureProgress(ctx, tx, req.UserID, now); err != nil {
			return err
		}

		list = &models.UserList{
			ID:        id.String(),
			UserID:    req.UserID,
			Name:      strings.TrimSpace(req.Name),
			CreatedAt: now,
		}
		return tx.SaveList(ctx, list)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("List created", zap.String("list_id", list.ID), zap.String("user_id", req.UserID))
	return list, nil
}

// GetLists returns the user's lists, newest first
func (s *listService) GetLists(ctx context.Context, userID string) ([]*models.UserList, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	lists, err := s.store.ListUserLists(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list user lists", zap.String("user_id", userID), zap.Error(err))
		return nil, NewPersistenceError(err)
	}
	if lists == nil {
		lists = []*models.UserList{}
	}
	return lists, nil
}

// GetList returns one of the user's lists with its items
func (s *listService) GetList(ctx context.Context, userID, listID string) (*ListWithItems, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, err := uuid.FromString(listID); err != nil {
		return nil, InvalidInputError("list_id", "must be a UUID")
	}

	var list *models.UserList
	err := s.runInTx(ctx, "get_list", func(ctx context.Context, tx repositories.Tx) error {
		found, err := tx.GetList(ctx, userID, listID)
		if errors.Is(err, repositories.ErrNotFound) {
			return EntityNotFoundError("list", listID)
		}
		list = found
		return err
	})
	if err != nil {
		return nil, err
	}

	items, err := s.store.ListListItems(ctx, listID)
	if err != nil {
		s.logger.Error("Failed to list list items", zap.String("list_id", listID), zap.Error(err))
		return nil, NewPersistenceError(err)
	}
	if items == nil {
		items = []*models.UserListItem{}
	}
	return &ListWithItems{UserList: list, Items: items}, nil
}

// AddItemToList upserts an item and bumps the list count only for new items
func (s *listService) AddItemToList(ctx context.Context, req *AddListItemRequest) (*AddListItemResult, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var result *AddListItemResult
	err := s.runInTx(ctx, "add_list_item", func(ctx context.Context, tx repositories.Tx) error {
		now := s.now().UTC()

		list, err := tx.GetList(ctx, req.UserID, req.ListID)
		if errors.Is(err, repositories.ErrNotFound) {
			return EntityNotFoundError("list", req.ListID)
		} else if err != nil {
			return err
		}

		added := false
		if _, err := tx.GetListItem(ctx, req.ListID, req.ItemID); errors.Is(err, repositories.ErrNotFound) {
			added = true
		} else if err != nil {
			return err
		}

		err = tx.PutListItem(ctx, &models.UserListItem{
			ListID:    req.ListID,
			ItemID:    req.ItemID,
			MediaType: req.MediaType,
			Metadata:  req.Metadata,
			AddedAt:   now,
		})
		if err != nil {
			return err
		}

		if added {
			list.ItemCount++
			if err := tx.SaveList(ctx, list); err != nil {
				return err
			}
		}

		result = &AddListItemResult{List: list, Added: added}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
