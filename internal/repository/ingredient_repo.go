package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"foodgram/internal/domain"
)

type IngredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

// List возвращает ингредиенты, опционально отфильтрованные по
// case-insensitive префиксу имени (автокомплит в форме рецепта).
func (r *IngredientRepository) List(ctx context.Context, namePrefix string) ([]domain.Ingredient, error) {
	q := r.db.WithContext(ctx).Model(&domain.Ingredient{})

	if namePrefix != "" {
		// LIKE по нижнему регистру работает одинаково в postgres и sqlite
		pattern := strings.ToLower(namePrefix) + "%"
		q = q.Where("LOWER(name) LIKE ?", pattern)
	}

	var ingredients []domain.Ingredient
	err := q.Order("id").Find(&ingredients).Error
	return ingredients, err
}

func (r *IngredientRepository) GetByID(ctx context.Context, id int64) (*domain.Ingredient, error) {
	var ing domain.Ingredient
	if err := r.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		return nil, err
	}
	return &ing, nil
}

func (r *IngredientRepository) CountByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Ingredient{}).
		Where("id IN ?", ids).
		Count(&count).Error
	return count, err
}

// GetOrCreate идемпотентно создаёт ингредиент по паре (name, unit).
// Используется CSV-загрузчиком.
func (r *IngredientRepository) GetOrCreate(ctx context.Context, name, measurementUnit string) (*domain.Ingredient, bool, error) {
	var ing domain.Ingredient
	err := r.db.WithContext(ctx).
		Where("name = ? AND measurement_unit = ?", name, measurementUnit).
		First(&ing).Error
	if err == nil {
		return &ing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	ing = domain.Ingredient{Name: name, MeasurementUnit: measurementUnit}
	if err := r.db.WithContext(ctx).Create(&ing).Error; err != nil {
		return nil, false, err
	}
	return &ing, true, nil
}
