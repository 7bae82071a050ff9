package service

import (
	"context"
	"fmt"

	"github.com/cashcraft/server/internal/models"
)

// Category methods
func (s *DefaultService) GetCategories(ctx context.Context, userID string) ([]models.Category, error) {
	categories, err := s.repo.GetCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting categories: %w", err)
	}
	return categories, nil
}

func (s *DefaultService) CreateCategory(
	ctx context.Context,
	userID string,
	req models.CreateCategoryRequest,
) (*models.Category, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	// Free-tier custom category cap; premium lifts it
	if !user.IsPremiumActive() {
		count, err := s.repo.CountCustomCategories(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("error counting categories: %w", err)
		}
		if count >= freeCategoryLimit {
			return nil, ErrCategoryLimit
		}
	}

	category := &models.Category{
		ID:       req.ID,
		UserID:   &userID,
		Name:     req.Name,
		Type:     req.Type,
		Icon:     req.Icon,
		Color:    req.Color,
		IsSystem: false,
	}

	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("error creating category: %w", err)
	}

	return category, nil
}

func (s *DefaultService) UpdateCategory(
	ctx context.Context,
	userID string,
	categoryID string,
	req models.UpdateCategoryRequest,
) (*models.Category, error) {
	category, err := s.repo.GetCategory(ctx, categoryID, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting category: %w", err)
	}
	if category == nil {
		return nil, ErrNotFound
	}

	// System categories accept nothing but a rename
	if category.IsSystem && (req.Type != nil || req.Icon != nil || req.Color != nil) {
		return nil, ErrSystemRenameOnly
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			return nil, fmt.Errorf("%w: unknown category type %q", ErrValidation, *req.Type)
		}
		category.Type = *req.Type
	}
	if req.Icon != nil {
		category.Icon = req.Icon
	}
	if req.Color != nil {
		category.Color = req.Color
	}

	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("error updating category: %w", err)
	}

	return category, nil
}

func (s *DefaultService) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	category, err := s.repo.GetCategory(ctx, categoryID, userID)
	if err != nil {
		return fmt.Errorf("error getting category: %w", err)
	}
	if category == nil {
		return ErrNotFound
	}

	if category.IsSystem {
		return ErrSystemCategory
	}

	count, err := s.repo.CountTransactionsByCategory(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("error counting category transactions: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d transactions", ErrCategoryInUse, count)
	}

	if err := s.repo.DeleteCategory(ctx, categoryID, userID); err != nil {
		return fmt.Errorf("error deleting category: %w", err)
	}

	return nil
}

// ResetCategories drops all the user's custom categories and reseeds the
// defaults
func (s *DefaultService) ResetCategories(ctx context.Context, userID string) ([]models.Category, error) {
	if err := s.repo.DeleteCustomCategories(ctx, userID); err != nil {
		return nil, fmt.Errorf("error deleting custom categories: %w", err)
	}

	created := make([]models.Category, 0, len(defaultCategories))
	for _, c := range defaultCategories {
		icon, color := c.Icon, c.Color
		category := models.Category{
			UserID:   &userID,
			Name:     c.Name,
			Type:     c.Type,
			Icon:     &icon,
			Color:    &color,
			IsSystem: true,
		}
		if err := s.repo.CreateCategory(ctx, &category); err != nil {
			return nil, fmt.Errorf("error reseeding categories: %w", err)
		}
		created = append(created, category)
	}

	return created, nil
}
