package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodgram/internal/domain"
)

// RecipeFilters — декларативный набор предикатов списка рецептов.
// Непустые предикаты соединяются по AND; внутри tags — OR по слагам.
// ViewerID == 0 означает анонимный запрос: фильтры по избранному/корзине
// при этом принудительно дают пустую выборку, чтобы не утекали чужие данные.
type RecipeFilters struct {
	TagSlugs  []string
	AuthorID  int64
	Favorited *bool
	InCart    *bool
	ViewerID  int64
	Limit     int
	Offset    int
}

// CartIngredientRow — проекция (имя, единица, количество) для агрегации
// списка покупок.
type CartIngredientRow struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

type RecipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create сохраняет рецепт вместе со связями тегов и ингредиентов в одной
// транзакции: либо всё, либо ничего.
func (r *RecipeRepository) Create(ctx context.Context, recipe *domain.Recipe, tagIDs []int64, amounts []domain.IngredientAmount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		return replaceRelations(tx, recipe, tagIDs, amounts)
	})
}

// Update обновляет поля рецепта и деструктивно заменяет полные наборы
// тегов и ingredient_amounts (clear-then-set, не merge) в одной транзакции.
func (r *RecipeRepository) Update(ctx context.Context, recipe *domain.Recipe, tagIDs []int64, amounts []domain.IngredientAmount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(recipe).Error; err != nil {
			return err
		}
		return replaceRelations(tx, recipe, tagIDs, amounts)
	})
}

func replaceRelations(tx *gorm.DB, recipe *domain.Recipe, tagIDs []int64, amounts []domain.IngredientAmount) error {
	var tags []domain.Tag
	if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return err
	}
	if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
		return err
	}

	if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&domain.IngredientAmount{}).Error; err != nil {
		return err
	}
	for i := range amounts {
		amounts[i].ID = 0
		amounts[i].RecipeID = recipe.ID
	}
	if len(amounts) > 0 {
		if err := tx.Create(&amounts).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *RecipeRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&domain.IngredientAmount{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&domain.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&domain.ShoppingCart{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Recipe{}, id).Error
	})
}

func (r *RecipeRepository) GetByID(ctx context.Context, id int64) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredient_amounts.id") }).
		Preload("Ingredients.Ingredient").
		First(&recipe, id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// List возвращает страницу рецептов по фильтрам, свежие публикации первыми.
func (r *RecipeRepository) List(ctx context.Context, f RecipeFilters) ([]domain.Recipe, int64, error) {
	// Аноним с фильтром по избранному/корзине: пустой результат, не ошибка
	if f.ViewerID == 0 && (f.Favorited != nil || f.InCart != nil) {
		return []domain.Recipe{}, 0, nil
	}

	q := r.db.WithContext(ctx).Model(&domain.Recipe{})

	if len(f.TagSlugs) > 0 {
		q = q.Where(
			"recipes.id IN (SELECT rt.recipe_id FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id WHERE t.slug IN ?)",
			f.TagSlugs,
		)
	}
	if f.AuthorID > 0 {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	if f.Favorited != nil {
		sub := "recipes.id IN (SELECT recipe_id FROM favorites WHERE user_id = ?)"
		if !*f.Favorited {
			sub = "recipes.id NOT IN (SELECT recipe_id FROM favorites WHERE user_id = ?)"
		}
		q = q.Where(sub, f.ViewerID)
	}
	if f.InCart != nil {
		sub := "recipes.id IN (SELECT recipe_id FROM shopping_carts WHERE user_id = ?)"
		if !*f.InCart {
			sub = "recipes.id NOT IN (SELECT recipe_id FROM shopping_carts WHERE user_id = ?)"
		}
		q = q.Where(sub, f.ViewerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []domain.Recipe
	err := q.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredient_amounts.id") }).
		Preload("Ingredients.Ingredient").
		Order("created_at DESC, id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&recipes).Error
	return recipes, total, err
}

// ListByAuthor — свежие рецепты автора, limit <= 0 означает "без ограничения".
func (r *RecipeRepository) ListByAuthor(ctx context.Context, authorID int64, limit int) ([]domain.Recipe, error) {
	q := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recipes []domain.Recipe
	err := q.Find(&recipes).Error
	return recipes, err
}

func (r *RecipeRepository) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

// FavoritedSet — какие из recipeIDs лежат в избранном userID.
func (r *RecipeRepository) FavoritedSet(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error) {
	return r.pairSet(ctx, &domain.Favorite{}, userID, recipeIDs)
}

// InCartSet — какие из recipeIDs лежат в корзине userID.
func (r *RecipeRepository) InCartSet(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error) {
	return r.pairSet(ctx, &domain.ShoppingCart{}, userID, recipeIDs)
}

func (r *RecipeRepository) pairSet(ctx context.Context, model any, userID int64, recipeIDs []int64) (map[int64]bool, error) {
	set := make(map[int64]bool, len(recipeIDs))
	if userID == 0 || len(recipeIDs) == 0 {
		return set, nil
	}
	var ids []int64
	err := r.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// CartIngredientRows — все строки ingredient_amounts по рецептам из корзины
// пользователя, в порядке вставки строк (порядок определяет ключи агрегации).
func (r *RecipeRepository) CartIngredientRows(ctx context.Context, userID int64) ([]CartIngredientRow, error) {
	var rows []CartIngredientRow
	err := r.db.WithContext(ctx).
		Table("ingredient_amounts AS ia").
		Select("i.name AS name, i.measurement_unit AS measurement_unit, ia.amount AS amount").
		Joins("JOIN ingredients i ON i.id = ia.ingredient_id").
		Where("ia.recipe_id IN (SELECT recipe_id FROM shopping_carts WHERE user_id = ?)", userID).
		Order("ia.id").
		Scan(&rows).Error
	return rows, err
}
