package subscription

import (
	"context"

	"foodgram/internal/domain"
	"foodgram/internal/modules/auth"
	"foodgram/internal/modules/recipe"
)

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type SubscriptionStore interface {
	ListAuthors(ctx context.Context, userID int64, limit, offset int) ([]domain.User, int64, error)
}

type RecipeStore interface {
	ListByAuthor(ctx context.Context, authorID int64, limit int) ([]domain.Recipe, error)
	CountByAuthor(ctx context.Context, authorID int64) (int64, error)
}

type RelationStore interface {
	Add(ctx context.Context, value any) error
	Remove(ctx context.Context, model any, query string, args ...any) error
}

type Service struct {
	users         UserStore
	subscriptions SubscriptionStore
	recipes       RecipeStore
	relations     RelationStore
}

func NewService(users UserStore, subscriptions SubscriptionStore, recipes RecipeStore, relations RelationStore) *Service {
	return &Service{
		users:         users,
		subscriptions: subscriptions,
		recipes:       recipes,
		relations:     relations,
	}
}

// Subscribe оформляет подписку userID → authorID и возвращает карточку
// автора. Подписка на себя запрещена независимо от текущего состояния.
func (s *Service) Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*AuthorResponse, error) {
	if userID == authorID {
		return nil, ErrSelfSubscribe
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	pair := &domain.Subscription{UserID: userID, AuthorID: authorID}
	if err := s.relations.Add(ctx, pair); err != nil {
		return nil, err
	}

	return s.authorCard(ctx, author, recipesLimit)
}

func (s *Service) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	return s.relations.Remove(ctx, &domain.Subscription{}, "user_id = ? AND author_id = ?", userID, authorID)
}

// ListSubscriptions возвращает страницу авторов, на которых подписан
// пользователь; is_subscribed у них по определению true.
func (s *Service) ListSubscriptions(ctx context.Context, userID int64, limit, offset, recipesLimit int) ([]AuthorResponse, int64, error) {
	authors, total, err := s.subscriptions.ListAuthors(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	out := make([]AuthorResponse, 0, len(authors))
	for i := range authors {
		card, err := s.authorCard(ctx, &authors[i], recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *card)
	}
	return out, total, nil
}

func (s *Service) authorCard(ctx context.Context, author *domain.User, recipesLimit int) (*AuthorResponse, error) {
	count, err := s.recipes.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	recipes, err := s.recipes.ListByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return nil, err
	}

	short := make([]recipe.ShortRecipeResponse, 0, len(recipes))
	for i := range recipes {
		short = append(short, recipe.ToShortRecipeResponse(&recipes[i]))
	}

	return &AuthorResponse{
		UserResponse: auth.ToUserResponse(author, true),
		RecipesCount: count,
		Recipes:      short,
	}, nil
}
