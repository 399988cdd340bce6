package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Facumerino03/Finquik-back/internal/apperr"
	"github.com/Facumerino03/Finquik-back/internal/models"

	"gorm.io/gorm"
)

// CategoryService implements category CRUD. Category names are unique per
// (owner, name, type) and the type never changes after creation.
type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// CategoryInput carries the caller-supplied category fields.
type CategoryInput struct {
	Name string
	Type models.CategoryType
}

func (in CategoryInput) validate() error {
	fields := map[string]string{}
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 100 {
		fields["name"] = "category name must be between 1 and 100 characters"
	}
	if !in.Type.Valid() {
		fields["type"] = "category type must be INCOME or EXPENSE"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

// nameTaken reports whether the user already has a category with this name
// and type. The comparison is case-insensitive.
func nameTaken(tx *gorm.DB, userID uint, name string, t models.CategoryType, excludeID uint) (bool, error) {
	q := tx.Model(&models.Category{}).
		Where("user_id = ? AND LOWER(name) = LOWER(?) AND type = ?", userID, name, t)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("count categories: %w", err)
	}
	return count > 0, nil
}

// Create stores a new category for the caller.
func (s *CategoryService) Create(ctx context.Context, email string, in CategoryInput) (*models.Category, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	user, err := resolveOwner(s.db.WithContext(ctx), email)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	taken, err := nameTaken(s.db.WithContext(ctx), user.ID, name, in.Type, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Duplicate("category with name '%s' and type '%s' already exists", name, in.Type)
	}

	category := models.Category{
		UserID: user.ID,
		Name:   name,
		Type:   in.Type,
	}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		// the unique index backs the pre-check against a concurrent create
		// of the same (name, type) pair
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Duplicate("category with name '%s' and type '%s' already exists", name, in.Type)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &category, nil
}

// List returns the caller's categories, optionally restricted to one type.
func (s *CategoryService) List(ctx context.Context, email string, t models.CategoryType) ([]models.Category, error) {
	if t != "" && !t.Valid() {
		return nil, apperr.ValidationField("type", "category type must be INCOME or EXPENSE")
	}

	user, err := resolveOwner(s.db.WithContext(ctx), email)
	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Where("user_id = ?", user.ID)
	if t != "" {
		q = q.Where("type = ?", t)
	}

	var categories []models.Category
	if err := q.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// GetByID returns the caller's category with the given id.
func (s *CategoryService) GetByID(ctx context.Context, email string, id uint) (*models.Category, error) {
	user, err := resolveOwner(s.db.WithContext(ctx), email)
	if err != nil {
		return nil, err
	}
	return categoryOf(s.db.WithContext(ctx), id, user.ID)
}

// Update renames a category. The type is immutable, so the duplicate check
// runs against the category's existing type.
func (s *CategoryService) Update(ctx context.Context, email string, id uint, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, apperr.ValidationField("name", "category name must be between 1 and 100 characters")
	}

	user, err := resolveOwner(s.db.WithContext(ctx), email)
	if err != nil {
		return nil, err
	}
	category, err := categoryOf(s.db.WithContext(ctx), id, user.ID)
	if err != nil {
		return nil, err
	}

	taken, err := nameTaken(s.db.WithContext(ctx), user.ID, name, category.Type, category.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Duplicate("category with name '%s' already exists for this type", name)
	}

	category.Name = name
	err = s.db.WithContext(ctx).Model(category).Update("name", name).Error
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

// Delete removes a category. Deletion is refused while transactions still
// reference it, since the category type is what signs their amounts.
func (s *CategoryService) Delete(ctx context.Context, email string, id uint) error {
	user, err := resolveOwner(s.db.WithContext(ctx), email)
	if err != nil {
		return err
	}
	category, err := categoryOf(s.db.WithContext(ctx), id, user.ID)
	if err != nil {
		return err
	}

	var refs int64
	err = s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("category_id = ?", category.ID).
		Count(&refs).Error
	if err != nil {
		return fmt.Errorf("count category transactions: %w", err)
	}
	if refs > 0 {
		return apperr.ValidationField("id", "category has transactions and cannot be deleted")
	}

	if err := s.db.WithContext(ctx).Delete(category).Error; err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// createDefaultCategories inserts the two Uncategorized categories every
// new user starts with. Runs inside the registration unit of work.
func createDefaultCategories(tx *gorm.DB, userID uint) error {
	defaults := []models.Category{
		{UserID: userID, Name: models.DefaultCategoryName, Type: models.CategoryTypeExpense},
		{UserID: userID, Name: models.DefaultCategoryName, Type: models.CategoryTypeIncome},
	}
	if err := tx.Create(&defaults).Error; err != nil {
		return fmt.Errorf("create default categories: %w", err)
	}
	return nil
}
