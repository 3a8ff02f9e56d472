package recipe

import (
	"foodgram/internal/domain"
	"foodgram/internal/modules/auth"
)

// IngredientAmountRequest — строка "ингредиент + количество" в payload.
// Дубликаты id не отклоняются: каждая строка создаёт свою запись связи.
type IngredientAmountRequest struct {
	ID     int64 `json:"id" validate:"required,min=1"`
	Amount int   `json:"amount" validate:"required,min=1"`
}

type CreateRecipeRequest struct {
	Name        string                    `json:"name" validate:"required,max=200"`
	Text        string                    `json:"text" validate:"required"`
	CookingTime int                       `json:"cooking_time" validate:"required,min=1"`
	Image       string                    `json:"image" validate:"required"`
	Tags        []int64                   `json:"tags" validate:"required,min=1"`
	Ingredients []IngredientAmountRequest `json:"ingredients" validate:"required,min=1,dive"`
}

// UpdateRecipeRequest — тот же payload, но image опционален: без него
// остаётся прежняя картинка.
type UpdateRecipeRequest struct {
	Name        string                    `json:"name" validate:"required,max=200"`
	Text        string                    `json:"text" validate:"required"`
	CookingTime int                       `json:"cooking_time" validate:"required,min=1"`
	Image       string                    `json:"image"`
	Tags        []int64                   `json:"tags" validate:"required,min=1"`
	Ingredients []IngredientAmountRequest `json:"ingredients" validate:"required,min=1,dive"`
}

// IngredientAmountResponse — ингредиент в каноничном представлении рецепта:
// id и единица измерения из справочника, количество из связи.
type IngredientAmountResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeResponse — единое каноничное представление рецепта для всех
// отдающих рецепт эндпоинтов, включая ответ на create/update.
type RecipeResponse struct {
	ID               int64                      `json:"id"`
	Name             string                     `json:"name"`
	Author           auth.UserResponse          `json:"author"`
	Text             string                     `json:"text"`
	Image            string                     `json:"image"`
	CookingTime      int                        `json:"cooking_time"`
	Tags             []domain.Tag               `json:"tags"`
	Ingredients      []IngredientAmountResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
}

// ShortRecipeResponse — краткая карточка (ответы toggle-эндпоинтов,
// списки рецептов в подписках).
type ShortRecipeResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func ToShortRecipeResponse(r *domain.Recipe) ShortRecipeResponse {
	return ShortRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

type RecipeListResponse struct {
	Recipes    []RecipeResponse `json:"recipes"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}
