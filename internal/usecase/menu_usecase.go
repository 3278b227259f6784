package usecase

import (
	"context"
	"errors"
	"strings"

	"restopos/internal/domain/model"
	repo "restopos/internal/repository"

	"github.com/shopspring/decimal"
)

type MenuUsecase struct {
	menuRepo repo.MenuItemRepository
}

// DI
func NewMenuUsecase(menuRepo repo.MenuItemRepository) *MenuUsecase {
	return &MenuUsecase{menuRepo: menuRepo}
}

// GET /menuの入力
type ListMenuInput struct {
	Category      string
	AvailableOnly bool
}

func (u *MenuUsecase) List(ctx context.Context, in ListMenuInput) ([]model.MenuItem, error) {
	if len(in.Category) > 100 {
		return []model.MenuItem{}, validationError("category too long")
	}

	items, err := u.menuRepo.List(ctx, repo.MenuListQuery{
		Category:      strings.TrimSpace(in.Category),
		AvailableOnly: in.AvailableOnly,
	})
	if err != nil {
		return []model.MenuItem{}, storeError("db error")
	}
	return items, nil
}

type MenuItemInput struct {
	Name     string
	Price    *decimal.Decimal
	Category string
	Image    string
	// nilなら販売中
	IsAvailable *bool
}

func validateMenuItem(in MenuItemInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return validationError("name required")
	}
	if len(in.Name) > 255 {
		return validationError("name too long")
	}
	if in.Price == nil {
		return validationError("price required")
	}
	if in.Price.IsNegative() {
		return validationError("price must be >= 0")
	}
	if strings.TrimSpace(in.Category) == "" {
		return validationError("category required")
	}
	return nil
}

func (in MenuItemInput) toModel() model.MenuItem {
	available := true
	if in.IsAvailable != nil {
		available = *in.IsAvailable
	}
	return model.MenuItem{
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price.Round(2),
		Category:    strings.TrimSpace(in.Category),
		Image:       strings.TrimSpace(in.Image),
		IsAvailable: available,
	}
}

func (u *MenuUsecase) Create(ctx context.Context, in MenuItemInput) (model.MenuItem, error) {
	if err := validateMenuItem(in); err != nil {
		return model.MenuItem{}, err
	}

	item, err := u.menuRepo.Create(ctx, in.toModel())
	if err != nil {
		return model.MenuItem{}, storeError("db error")
	}
	return item, nil
}

// 価格を変えても過去の注文には影響しない
func (u *MenuUsecase) Update(ctx context.Context, id string, in MenuItemInput) (model.MenuItem, error) {
	if strings.TrimSpace(id) == "" {
		return model.MenuItem{}, validationError("invalid id")
	}
	if err := validateMenuItem(in); err != nil {
		return model.MenuItem{}, err
	}

	item := in.toModel()
	item.ID = id
	if err := u.menuRepo.Update(ctx, item); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.MenuItem{}, notFoundError("menu item not found")
		}
		return model.MenuItem{}, storeError("db error")
	}

	updated, err := u.menuRepo.FindByID(ctx, id)
	if err != nil {
		return model.MenuItem{}, storeError("db error")
	}
	return updated, nil
}

func (u *MenuUsecase) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return validationError("invalid id")
	}
	if err := u.menuRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundError("menu item not found")
		}
		return storeError("db error")
	}
	return nil
}
