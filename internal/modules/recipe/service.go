package recipe

import (
	"context"
	"fmt"
	"strings"

	"foodgram/internal/domain"
	"foodgram/internal/modules/auth"
	"foodgram/internal/repository"
)

type RecipeStore interface {
	Create(ctx context.Context, recipe *domain.Recipe, tagIDs []int64, amounts []domain.IngredientAmount) error
	Update(ctx context.Context, recipe *domain.Recipe, tagIDs []int64, amounts []domain.IngredientAmount) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Recipe, error)
	List(ctx context.Context, f repository.RecipeFilters) ([]domain.Recipe, int64, error)
	FavoritedSet(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error)
	InCartSet(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error)
	CartIngredientRows(ctx context.Context, userID int64) ([]repository.CartIngredientRow, error)
}

type TagStore interface {
	CountByIDs(ctx context.Context, ids []int64) (int64, error)
}

type IngredientStore interface {
	CountByIDs(ctx context.Context, ids []int64) (int64, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	SubscribedSet(ctx context.Context, userID int64, authorIDs []int64) (map[int64]bool, error)
}

type RelationStore interface {
	Add(ctx context.Context, value any) error
	Remove(ctx context.Context, model any, query string, args ...any) error
}

type ImageSaver interface {
	SaveDataURI(data string) (string, error)
}

type Service struct {
	recipes     RecipeStore
	tags        TagStore
	ingredients IngredientStore
	users       UserStore
	relations   RelationStore
	images      ImageSaver
}

func NewService(
	recipes RecipeStore,
	tags TagStore,
	ingredients IngredientStore,
	users UserStore,
	relations RelationStore,
	images ImageSaver,
) *Service {
	return &Service{
		recipes:     recipes,
		tags:        tags,
		ingredients: ingredients,
		users:       users,
		relations:   relations,
		images:      images,
	}
}

/* ---------- NESTED WRITE ---------- */

// Create сохраняет рецепт вместе со связями. Автор — всегда автор запроса,
// из payload он прийти не может.
func (s *Service) Create(ctx context.Context, authorID int64, req CreateRecipeRequest) (*RecipeResponse, error) {
	if err := s.validateRefs(ctx, req.Tags, req.Ingredients); err != nil {
		return nil, err
	}

	imageURL, err := s.images.SaveDataURI(req.Image)
	if err != nil {
		return nil, err
	}

	rec := &domain.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Image:       imageURL,
	}

	if err := s.recipes.Create(ctx, rec, uniqueIDs(req.Tags), toAmounts(req.Ingredients)); err != nil {
		return nil, err
	}

	return s.Get(ctx, authorID, rec.ID)
}

// Update обновляет поля и деструктивно заменяет полные наборы тегов и
// ингредиентов. Только для автора.
func (s *Service) Update(ctx context.Context, userID, recipeID int64, req UpdateRecipeRequest) (*RecipeResponse, error) {
	rec, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if rec.AuthorID != userID {
		return nil, ErrForbidden
	}

	if err := s.validateRefs(ctx, req.Tags, req.Ingredients); err != nil {
		return nil, err
	}

	if req.Image != "" {
		imageURL, err := s.images.SaveDataURI(req.Image)
		if err != nil {
			return nil, err
		}
		rec.Image = imageURL
	}

	rec.Name = req.Name
	rec.Text = req.Text
	rec.CookingTime = req.CookingTime
	rec.Tags = nil
	rec.Ingredients = nil

	if err := s.recipes.Update(ctx, rec, uniqueIDs(req.Tags), toAmounts(req.Ingredients)); err != nil {
		return nil, err
	}

	return s.Get(ctx, userID, rec.ID)
}

func (s *Service) Delete(ctx context.Context, userID, recipeID int64) error {
	rec, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return err
	}
	if rec.AuthorID != userID {
		return ErrForbidden
	}
	return s.recipes.Delete(ctx, recipeID)
}

// validateRefs — all-or-nothing проверка ссылок payload по справочникам.
// Сравнивается число РАЗЛИЧНЫХ id с числом найденных строк, поэтому
// дубликаты в payload проходят валидацию.
func (s *Service) validateRefs(ctx context.Context, tagIDs []int64, ingredients []IngredientAmountRequest) error {
	tags := uniqueIDs(tagIDs)
	count, err := s.tags.CountByIDs(ctx, tags)
	if err != nil {
		return err
	}
	if count != int64(len(tags)) {
		return ErrTagsNotFound
	}

	ingIDs := make([]int64, 0, len(ingredients))
	for _, ing := range ingredients {
		ingIDs = append(ingIDs, ing.ID)
	}
	ingIDs = uniqueIDs(ingIDs)
	count, err = s.ingredients.CountByIDs(ctx, ingIDs)
	if err != nil {
		return err
	}
	if count != int64(len(ingIDs)) {
		return ErrIngredientsNotFound
	}
	return nil
}

/* ---------- READ ---------- */

func (s *Service) Get(ctx context.Context, viewerID, recipeID int64) (*RecipeResponse, error) {
	rec, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	views, err := s.buildViews(ctx, viewerID, []domain.Recipe{*rec})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) List(ctx context.Context, f repository.RecipeFilters) ([]RecipeResponse, int64, error) {
	recipes, total, err := s.recipes.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.buildViews(ctx, f.ViewerID, recipes)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// buildViews собирает каноничные представления: is_favorited,
// is_in_shopping_cart и author.is_subscribed зависят от viewerID
// (0 — аноним, все флаги false).
func (s *Service) buildViews(ctx context.Context, viewerID int64, recipes []domain.Recipe) ([]RecipeResponse, error) {
	recipeIDs := make([]int64, 0, len(recipes))
	authorIDs := make([]int64, 0, len(recipes))
	for i := range recipes {
		recipeIDs = append(recipeIDs, recipes[i].ID)
		authorIDs = append(authorIDs, recipes[i].AuthorID)
	}

	favorited, err := s.recipes.FavoritedSet(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.recipes.InCartSet(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.users.SubscribedSet(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		rec := &recipes[i]

		ingredients := make([]IngredientAmountResponse, 0, len(rec.Ingredients))
		for _, ia := range rec.Ingredients {
			resp := IngredientAmountResponse{
				ID:     ia.IngredientID,
				Amount: ia.Amount,
			}
			if ia.Ingredient != nil {
				resp.Name = ia.Ingredient.Name
				resp.MeasurementUnit = ia.Ingredient.MeasurementUnit
			}
			ingredients = append(ingredients, resp)
		}

		var author auth.UserResponse
		if rec.Author != nil {
			author = auth.ToUserResponse(rec.Author, subscribed[rec.AuthorID])
		}

		tags := rec.Tags
		if tags == nil {
			tags = []domain.Tag{}
		}

		views = append(views, RecipeResponse{
			ID:               rec.ID,
			Name:             rec.Name,
			Author:           author,
			Text:             rec.Text,
			Image:            rec.Image,
			CookingTime:      rec.CookingTime,
			Tags:             tags,
			Ingredients:      ingredients,
			IsFavorited:      favorited[rec.ID],
			IsInShoppingCart: inCart[rec.ID],
		})
	}
	return views, nil
}

/* ---------- FAVORITE / CART TOGGLES ---------- */

func (s *Service) AddFavorite(ctx context.Context, userID, recipeID int64) (*ShortRecipeResponse, error) {
	return s.addRelation(ctx, recipeID, &domain.Favorite{UserID: userID, RecipeID: recipeID})
}

func (s *Service) RemoveFavorite(ctx context.Context, userID, recipeID int64) error {
	return s.relations.Remove(ctx, &domain.Favorite{}, "user_id = ? AND recipe_id = ?", userID, recipeID)
}

func (s *Service) AddToCart(ctx context.Context, userID, recipeID int64) (*ShortRecipeResponse, error) {
	return s.addRelation(ctx, recipeID, &domain.ShoppingCart{UserID: userID, RecipeID: recipeID})
}

func (s *Service) RemoveFromCart(ctx context.Context, userID, recipeID int64) error {
	return s.relations.Remove(ctx, &domain.ShoppingCart{}, "user_id = ? AND recipe_id = ?", userID, recipeID)
}

func (s *Service) addRelation(ctx context.Context, recipeID int64, pair any) (*ShortRecipeResponse, error) {
	rec, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.relations.Add(ctx, pair); err != nil {
		return nil, err
	}
	short := ToShortRecipeResponse(rec)
	return &short, nil
}

/* ---------- SHOPPING CART AGGREGATION ---------- */

// ShoppingCartReport строит текстовый отчёт по корзине: одна строка на
// РАЗЛИЧНОЕ имя ингредиента в порядке первого вхождения, количество
// суммируется. Единица измерения берётся из первой встреченной строки
// с этим именем; последующие единицы на ключ не влияют.
// Пустая корзина — пустой документ, не ошибка.
func (s *Service) ShoppingCartReport(ctx context.Context, userID int64) (string, error) {
	rows, err := s.recipes.CartIngredientRows(ctx, userID)
	if err != nil {
		return "", err
	}

	type entry struct {
		amount int
		unit   string
	}
	sums := make(map[string]*entry, len(rows))
	order := make([]string, 0, len(rows))

	for _, row := range rows {
		if e, ok := sums[row.Name]; ok {
			e.amount += row.Amount
			continue
		}
		sums[row.Name] = &entry{amount: row.Amount, unit: row.MeasurementUnit}
		order = append(order, row.Name)
	}

	var b strings.Builder
	for _, name := range order {
		e := sums[name]
		fmt.Fprintf(&b, "%s\t%d %s\n", name, e.amount, e.unit)
	}
	return b.String(), nil
}

// ReportFilename — имя файла-вложения для отчёта.
func (s *Service) ReportFilename(ctx context.Context, userID int64) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Username + "shopping_cart.txt", nil
}

/* ---------- HELPERS ---------- */

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func toAmounts(ingredients []IngredientAmountRequest) []domain.IngredientAmount {
	amounts := make([]domain.IngredientAmount, 0, len(ingredients))
	for _, ing := range ingredients {
		amounts = append(amounts, domain.IngredientAmount{
			IngredientID: ing.ID,
			Amount:       ing.Amount,
		})
	}
	return amounts
}
