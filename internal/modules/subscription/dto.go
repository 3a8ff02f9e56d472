package subscription

import (
	"foodgram/internal/modules/auth"
	"foodgram/internal/modules/recipe"
)

// AuthorResponse — карточка автора в подписках: профиль + счётчик и
// свежие рецепты (опционально усечённые recipes_limit).
type AuthorResponse struct {
	auth.UserResponse
	RecipesCount int64                        `json:"recipes_count"`
	Recipes      []recipe.ShortRecipeResponse `json:"recipes"`
}

type SubscriptionListResponse struct {
	Authors    []AuthorResponse `json:"authors"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}
