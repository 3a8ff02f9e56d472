package domain

import "time"

// Recipe — рецепт с тегами и ингредиентами через IngredientAmount.
// Порядок выдачи по умолчанию: сначала самые свежие публикации.
type Recipe struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	AuthorID    int64  `json:"author_id" gorm:"not null;index"`
	Name        string `json:"name" gorm:"size:200;not null"`
	Text        string `json:"text" gorm:"type:text;not null"`
	CookingTime int    `json:"cooking_time" gorm:"not null;default:1;check:chk_cooking_time,cooking_time >= 1"`
	Image       string `json:"image" gorm:"size:500;not null"`

	Author      *User              `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Tags        []Tag              `json:"tags" gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	Ingredients []IngredientAmount `json:"ingredients" gorm:"foreignKey:RecipeID"`

	CreatedAt time.Time `json:"pub_date" gorm:"index"`
	UpdatedAt time.Time `json:"-"`
}

func (Recipe) TableName() string { return "recipes" }

// IngredientAmount — количественная связь рецепт×ингредиент.
// Единственное место, где хранится количество.
type IngredientAmount struct {
	ID           int64 `json:"id" gorm:"primaryKey"`
	RecipeID     int64 `json:"recipe_id" gorm:"not null;index"`
	IngredientID int64 `json:"ingredient_id" gorm:"not null"`
	Amount       int   `json:"amount" gorm:"not null;check:chk_amount,amount >= 1"`

	Ingredient *Ingredient `json:"-" gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
}

func (IngredientAmount) TableName() string { return "ingredient_amounts" }

// Favorite — отметка "в избранном": (user, recipe) уникальна.
type Favorite struct {
	ID       int64 `json:"id" gorm:"primaryKey"`
	UserID   int64 `json:"user_id" gorm:"not null;uniqueIndex:idx_favorites_user_recipe"`
	RecipeID int64 `json:"recipe_id" gorm:"not null;uniqueIndex:idx_favorites_user_recipe"`

	User   *User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe *Recipe `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
}

func (Favorite) TableName() string { return "favorites" }

// ShoppingCart — отметка "в списке покупок": (user, recipe) уникальна.
type ShoppingCart struct {
	ID       int64 `json:"id" gorm:"primaryKey"`
	UserID   int64 `json:"user_id" gorm:"not null;uniqueIndex:idx_shopping_carts_user_recipe"`
	RecipeID int64 `json:"recipe_id" gorm:"not null;uniqueIndex:idx_shopping_carts_user_recipe"`

	User   *User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe *Recipe `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
}

func (ShoppingCart) TableName() string { return "shopping_carts" }
