package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tillpoint/pos-backend/pkg/db"
	"github.com/tillpoint/pos-backend/pkg/db/models"
	pkgerrors "github.com/tillpoint/pos-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ReorderDirection moves a category one slot up or down the grid.
type ReorderDirection string

const (
	ReorderUp   ReorderDirection = "up"
	ReorderDown ReorderDirection = "down"
)

// Service exposes catalog administration and lookup operations.
type Service interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	// GetProductWithSizing resolves a product together with its category's
	// sized flag, which the register needs to snapshot a cart line.
	GetProductWithSizing(ctx context.Context, id uuid.UUID) (*models.Product, bool, error)
	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, input CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ReorderCategory(ctx context.Context, id string, direction ReorderDirection) error
}

type service struct {
	products   ProductRepository
	categories CategoryRepository
	tx         txRunner
}

// NewService wires a catalog service with the provided repositories.
func NewService(products ProductRepository, categories CategoryRepository, tx txRunner) (Service, error) {
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{products: products, categories: categories, tx: tx}, nil
}

// ProductInput captures the admin payload for creating or updating a product.
type ProductInput struct {
	Name       string
	CategoryID string
	BasePrice  decimal.Decimal
	Image      string
}

// CategoryInput captures the admin payload for creating or updating a category.
type CategoryInput struct {
	ID    string
	Label string
	Icon  string
	Sized bool
}

func (s *service) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.products.List(ctx)
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	return product, nil
}

func (s *service) GetProductWithSizing(ctx context.Context, id uuid.UUID) (*models.Product, bool, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, false, err
	}
	category, err := s.categories.GetByID(ctx, product.CategoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return product, false, nil
		}
		return nil, false, err
	}
	return product, category.Sized, nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := s.validateProductInput(ctx, input); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:         uuid.New(),
		Name:       strings.TrimSpace(input.Name),
		CategoryID: input.CategoryID,
		BasePrice:  input.BasePrice,
		Image:      input.Image,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error) {
	if err := s.validateProductInput(ctx, input); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(input.Name)
	product.CategoryID = input.CategoryID
	product.BasePrice = input.BasePrice
	product.Image = input.Image
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	return s.products.Delete(ctx, id)
}

func (s *service) validateProductInput(ctx context.Context, input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.BasePrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "base price cannot be negative")
	}
	if input.CategoryID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
		}
		return err
	}
	return nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	if err := validateCategoryInput(input); err != nil {
		return nil, err
	}

	maxPos, err := s.categories.MaxPosition(ctx)
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		ID:       input.ID,
		Label:    strings.TrimSpace(input.Label),
		Icon:     input.Icon,
		Sized:    input.Sized,
		Position: maxPos + 1,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category id already exists")
		}
		return nil, err
	}
	return category, nil
}

func (s *service) UpdateCategory(ctx context.Context, id string, input CategoryInput) (*models.Category, error) {
	if err := validateCategoryInput(CategoryInput{ID: id, Label: input.Label}); err != nil {
		return nil, err
	}

	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, err
	}

	category.Label = strings.TrimSpace(input.Label)
	category.Icon = input.Icon
	category.Sized = input.Sized
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return err
	}

	count, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category still has products").
			WithDetails(map[string]any{"products": count})
	}
	return s.categories.Delete(ctx, id)
}

// ReorderCategory swaps the category's position with its neighbor in the
// requested direction. Swapping past either end is a no-op.
func (s *service) ReorderCategory(ctx context.Context, id string, direction ReorderDirection) error {
	if direction != ReorderUp && direction != ReorderDown {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid reorder direction %q", direction))
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i, category := range categories {
		if category.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}

	swap := idx - 1
	if direction == ReorderDown {
		swap = idx + 1
	}
	if swap < 0 || swap >= len(categories) {
		return nil
	}

	a, b := categories[idx], categories[swap]
	a.Position, b.Position = b.Position, a.Position

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.categories.WithTx(tx)
		if err := repo.Save(ctx, &a); err != nil {
			return err
		}
		return repo.Save(ctx, &b)
	})
}

func validateCategoryInput(input CategoryInput) error {
	if strings.TrimSpace(input.ID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	if strings.TrimSpace(input.Label) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category label is required")
	}
	return nil
}
