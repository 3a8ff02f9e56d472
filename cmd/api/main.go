package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/middleware"
	"foodgram/internal/modules/auth"
	"foodgram/internal/modules/ingredient"
	"foodgram/internal/modules/recipe"
	"foodgram/internal/modules/subscription"
	"foodgram/internal/modules/tag"
	jwtsvc "foodgram/internal/pkg/jwt"
	"foodgram/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	relationRepo := repository.NewRelationRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	images := recipe.NewImageStore(cfg.MediaDir, cfg.MediaURLBase)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	tagHandler := tag.NewHandler(tagRepo)
	ingredientHandler := ingredient.NewHandler(ingredientRepo)

	recipeService := recipe.NewService(
		recipeRepo,
		tagRepo,
		ingredientRepo,
		userRepo,
		relationRepo,
		images,
	)
	recipeHandler := recipe.NewHandler(recipeService)

	subscriptionService := subscription.NewService(userRepo, subscriptionRepo, recipeRepo, relationRepo)
	subscriptionHandler := subscription.NewHandler(subscriptionService)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	// Загруженные картинки рецептов раздаём как статику.
	r.Static(cfg.MediaURLBase, cfg.MediaDir)

	api := r.Group("/api")
	{
		// public
		authHandler.RegisterPublicRoutes(api)
		tagHandler.RegisterRoutes(api)
		ingredientHandler.RegisterRoutes(api)

		// анонимам можно, но user_id из токена влияет на is_subscribed,
		// is_favorited и is_in_shopping_cart
		optional := api.Group("/")
		optional.Use(middleware.OptionalJWTAuth(j))
		{
			authHandler.RegisterOptionalRoutes(optional)
			recipeHandler.RegisterOptionalRoutes(optional)
		}

		// protected
		protected := api.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			recipeHandler.RegisterProtectedRoutes(protected)
			subscriptionHandler.RegisterProtectedRoutes(protected)
		}
	}

	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
