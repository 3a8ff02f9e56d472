package e2e

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"foodgram/internal/database"
	"foodgram/internal/domain"
	"foodgram/internal/middleware"
	"foodgram/internal/modules/auth"
	"foodgram/internal/modules/ingredient"
	"foodgram/internal/modules/recipe"
	"foodgram/internal/modules/subscription"
	"foodgram/internal/modules/tag"
	jwtsvc "foodgram/internal/pkg/jwt"
	"foodgram/internal/repository"
)

type E2ETestSuite struct {
	router     *gin.Engine
	db         *gorm.DB
	jwtService *jwtsvc.Service
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	// In-memory SQLite, схема с нуля на каждый прогон.
	db, err := database.Connect(":memory:")
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, database.Migrate(db), "Failed to migrate test schema")

	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	relationRepo := repository.NewRelationRepository(db)

	jwtService := jwtsvc.New("test_secret_key_32_characters_min", 24*time.Hour)
	images := recipe.NewImageStore(t.TempDir(), "/media")

	authService := auth.NewService(userRepo, jwtService)
	authHandler := auth.NewHandler(authService)

	tagHandler := tag.NewHandler(tagRepo)
	ingredientHandler := ingredient.NewHandler(ingredientRepo)

	recipeService := recipe.NewService(recipeRepo, tagRepo, ingredientRepo, userRepo, relationRepo, images)
	recipeHandler := recipe.NewHandler(recipeService)

	subscriptionService := subscription.NewService(userRepo, subscriptionRepo, recipeRepo, relationRepo)
	subscriptionHandler := subscription.NewHandler(subscriptionService)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")

	authHandler.RegisterPublicRoutes(api)
	tagHandler.RegisterRoutes(api)
	ingredientHandler.RegisterRoutes(api)

	optional := api.Group("/")
	optional.Use(middleware.OptionalJWTAuth(jwtService))
	{
		authHandler.RegisterOptionalRoutes(optional)
		recipeHandler.RegisterOptionalRoutes(optional)
	}

	protected := api.Group("/")
	protected.Use(middleware.JWTAuth(jwtService))
	{
		authHandler.RegisterProtectedRoutes(protected)
		recipeHandler.RegisterProtectedRoutes(protected)
		subscriptionHandler.RegisterProtectedRoutes(protected)
	}

	return &E2ETestSuite{
		router:     r,
		db:         db,
		jwtService: jwtService,
	}
}

func (s *E2ETestSuite) makeRequest(method, path string, body interface{}, token string) (*httptest.ResponseRecorder, error) {
	var bodyBytes []byte
	var err error

	if body != nil {
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	return w, nil
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) *TestResponse {
	var resp TestResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "Failed to parse response. Status: %d, Body: %s", w.Code, w.Body.String())
	return &resp
}

// registerUser создаёт пользователя через API и возвращает его id и токен.
func (s *E2ETestSuite) registerUser(t *testing.T, username, email string) (int64, string) {
	w, err := s.makeRequest("POST", "/api/users", map[string]interface{}{
		"email":      email,
		"username":   username,
		"first_name": "Имя",
		"last_name":  "Фамилия",
		"password":   "Password123!",
	}, "")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, w.Code, "register failed: %s", w.Body.String())

	resp := parseResponse(t, w)
	userID := int64(resp.Data["user"].(map[string]interface{})["id"].(float64))

	w, err = s.makeRequest("POST", "/api/auth/token/login", map[string]interface{}{
		"email":    email,
		"password": "Password123!",
	}, "")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	return userID, parseResponse(t, w).Data["token"].(string)
}

// seedCatalog кладёт в БД теги и ингредиенты напрямую: у API нет
// админских эндпоинтов для справочников.
func (s *E2ETestSuite) seedCatalog(t *testing.T) (tags []domain.Tag, ingredients []domain.Ingredient) {
	tags = []domain.Tag{
		{Name: "Завтрак", Color: "#E26C2D", Slug: "breakfast"},
		{Name: "Ужин", Color: "#8775D2", Slug: "dinner"},
	}
	for i := range tags {
		require.NoError(t, s.db.Create(&tags[i]).Error)
	}

	ingredients = []domain.Ingredient{
		{Name: "мука", MeasurementUnit: "г"},
		{Name: "яйцо", MeasurementUnit: "шт."},
		{Name: "молоко", MeasurementUnit: "мл"},
	}
	for i := range ingredients {
		require.NoError(t, s.db.Create(&ingredients[i]).Error)
	}
	return tags, ingredients
}

func testImage() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))
}

// =============================================================================
// Flow 1: регистрация и аутентификация
// =============================================================================

func TestFlow1_RegistrationAndAuth(t *testing.T) {
	suite := setupTestSuite(t)

	t.Run("POST /users", func(t *testing.T) {
		w, err := suite.makeRequest("POST", "/api/users", map[string]interface{}{
			"email":      "cook@test.com",
			"username":   "cook",
			"first_name": "Аружан",
			"last_name":  "Сапарова",
			"password":   "Password123!",
		}, "")
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := parseResponse(t, w)
		assert.True(t, resp.Success)

		user := resp.Data["user"].(map[string]interface{})
		assert.Equal(t, "cook", user["username"])
		assert.Equal(t, false, user["is_subscribed"])
	})

	t.Run("POST /users duplicate email", func(t *testing.T) {
		w, err := suite.makeRequest("POST", "/api/users", map[string]interface{}{
			"email":      "cook@test.com",
			"username":   "othercook",
			"first_name": "А",
			"last_name":  "Б",
			"password":   "Password123!",
		}, "")
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := parseResponse(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Contains(t, resp.Error.Fields, "email")
	})

	t.Run("POST /auth/token/login", func(t *testing.T) {
		w, err := suite.makeRequest("POST", "/api/auth/token/login", map[string]interface{}{
			"email":    "cook@test.com",
			"password": "Password123!",
		}, "")
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := parseResponse(t, w)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Data["token"])
	})

	t.Run("GET /users/me", func(t *testing.T) {
		_, token := suite.registerUser(t, "me_user", "me@test.com")

		w, err := suite.makeRequest("GET", "/api/users/me", nil, token)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := parseResponse(t, w)
		user := resp.Data["user"].(map[string]interface{})
		assert.Equal(t, "me@test.com", user["email"])
	})

	t.Run("GET /users/me without token", func(t *testing.T) {
		w, err := suite.makeRequest("GET", "/api/users/me", nil, "")
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// =============================================================================
// Flow 2: жизненный цикл рецепта
// =============================================================================

func TestFlow2_RecipeLifecycle(t *testing.T) {
	suite := setupTestSuite(t)
	tags, ingredients := suite.seedCatalog(t)

	_, authorToken := suite.registerUser(t, "author", "author@test.com")
	_, strangerToken := suite.registerUser(t, "stranger", "stranger@test.com")

	var recipeID int64

	t.Run("POST /recipes", func(t *testing.T) {
		w, err := suite.makeRequest("POST", "/api/recipes", map[string]interface{}{
			"name":         "Блины",
			"text":         "Смешать и жарить.",
			"cooking_time": 30,
			"image":        testImage(),
			"tags":         []int64{tags[0].ID},
			"ingredients": []map[string]interface{}{
				{"id": ingredients[0].ID, "amount": 200},
				{"id": ingredients[1].ID, "amount": 2},
			},
		}, authorToken)
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		resp := parseResponse(t, w)
		require.True(t, resp.Success)

		rec := resp.Data["recipe"].(map[string]interface{})
		recipeID = int64(rec["id"].(float64))
		assert.Equal(t, "Блины", rec["name"])
		assert.Len(t, rec["ingredients"].([]interface{}), 2)
		assert.Len(t, rec["tags"].([]interface{}), 1)

		author := rec["author"].(map[string]interface{})
		assert.Equal(t, "author", author["username"])
	})

	t.Run("POST /recipes unknown ingredient", func(t *testing.T) {
		w, err := suite.makeRequest("POST", "/api/recipes", map[string]interface{}{
			"name":         "Никакой",
			"text":         "...",
			"cooking_time": 5,
			"image":        testImage(),
			"tags":         []int64{tags[0].ID},
			"ingredients": []map[string]interface{}{
				{"id": 99999, "amount": 1},
			},
		}, authorToken)
		require.NoError(t, err)

		// all-or-nothing: ничего не записано.
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var count int64
		suite.db.Model(&domain.Recipe{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("GET /recipes anonymous", func(t *testing.T) {
		w, err := suite.makeRequest("GET", "/api/recipes", nil, "")
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := parseResponse(t, w)
		recipes := resp.Data["recipes"].([]interface{})
		require.Len(t, recipes, 1)

		rec := recipes[0].(map[string]interface{})
		assert.Equal(t, false, rec["is_favorited"])
		assert.Equal(t, false, rec["is_in_shopping_cart"])
	})

	t.Run("GET /recipes filter by tag", func(t *testing.T) {
		w, err := suite.makeRequest("GET", "/api/recipes?tags=breakfast", nil, "")
		require.NoError(t, err)
		resp := parseResponse(t, w)
		assert.Len(t, resp.Data["recipes"].([]interface{}), 1)

		w, err = suite.makeRequest("GET", "/api/recipes?tags=dinner", nil, "")
		require.NoError(t, err)
		resp = parseResponse(t, w)
		assert.Len(t, resp.Data["recipes"].([]interface{}), 0)
	})

	t.Run("GET /recipes is_favorited=1 anonymous is empty", func(t *testing.T) {
		w, err := suite.makeRequest("GET", "/api/recipes?is_favorited=1", nil, "")
		require.NoError(t, err)

		resp := parseResponse(t, w)
		assert.Len(t, resp.Data["recipes"].([]interface{}), 0)
	})

	t.Run("PATCH /recipes/:id by stranger", func(t *testing.T) {
		w, err := suite.makeRequest("PATCH", fmt.Sprintf("/api/recipes/%d", recipeID), map[string]interface{}{
			"name":         "Чужие блины",
			"text":         "...",
			"cooking_time": 10,
			"tags":         []int64{tags[0].ID},
			"ingredients": []map[string]interface{}{
				{"id": ingredients[0].ID, "amount": 1},
			},
		}, strangerToken)
		require.NoError(t, err)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("PATCH /recipes/:id replaces relations", func(t *testing.T) {
		w, err := suite.makeRequest("PATCH", fmt.Sprintf("/api/recipes/%d", recipeID), map[string]interface{}{
			"name":         "Блины на молоке",
			"text":         "Теперь с молоком.",
			"cooking_time": 35,
			"tags":         []int64{tags[1].ID},
			"ingredients": []map[string]interface{}{
				{"id": ingredients[2].ID, "amount": 500},
			},
		}, authorToken)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := parseResponse(t, w)
		rec := resp.Data["recipe"].(map[string]interface{})

		// Старые наборы заменены целиком.
		recTags := rec["tags"].([]interface{})
		require.Len(t, recTags, 1)
		assert.Equal(t, "dinner", recTags[0].(map[string]interface{})["slug"])

		recIngredients := rec["ingredients"].([]interface{})
		require.Len(t, recIngredients, 1)
		assert.Equal(t, "молоко", recIngredients[0].(map[string]interface{})["name"])
	})

	t.Run("DELETE /recipes/:id", func(t *testing.T) {
		w, err := suite.makeRequest("DELETE", fmt.Sprintf("/api/recipes/%d", recipeID), nil, authorToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w, err = suite.makeRequest("GET", fmt.Sprintf("/api/recipes/%d", recipeID), nil, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// =============================================================================
// Flow 3: избранное, корзина и выгрузка списка покупок
// =============================================================================

func TestFlow3_FavoritesCartAndReport(t *testing.T) {
	suite := setupTestSuite(t)
	tags, ingredients := suite.seedCatalog(t)

	_, token := suite.registerUser(t, "buyer", "buyer@test.com")

	createRecipe := func(t *testing.T, name string, ing []map[string]interface{}) int64 {
		w, err := suite.makeRequest("POST", "/api/recipes", map[string]interface{}{
			"name":         name,
			"text":         "...",
			"cooking_time": 10,
			"image":        testImage(),
			"tags":         []int64{tags[0].ID},
			"ingredients":  ing,
		}, token)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		rec := parseResponse(t, w).Data["recipe"].(map[string]interface{})
		return int64(rec["id"].(float64))
	}

	pancakesID := createRecipe(t, "Блины", []map[string]interface{}{
		{"id": ingredients[0].ID, "amount": 100},
		{"id": ingredients[1].ID, "amount": 2},
	})
	breadID := createRecipe(t, "Хлеб", []map[string]interface{}{
		{"id": ingredients[0].ID, "amount": 50},
	})

	t.Run("POST /recipes/:id/favorite", func(t *testing.T) {
		w, err := suite.makeRequest("POST", fmt.Sprintf("/api/recipes/%d/favorite", pancakesID), nil, token)
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, w.Code)
		short := parseResponse(t, w).Data["recipe"].(map[string]interface{})
		assert.Equal(t, "Блины", short["name"])
	})

	t.Run("POST /recipes/:id/favorite again is conflict", func(t *testing.T) {
		w, err := suite.makeRequest("POST", fmt.Sprintf("/api/recipes/%d/favorite", pancakesID), nil, token)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ALREADY_EXISTS", parseResponse(t, w).Error.Code)
	})

	t.Run("POST favorite on missing recipe", func(t *testing.T) {
		w, err := suite.makeRequest("POST", "/api/recipes/99999/favorite", nil, token)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("DELETE /recipes/:id/favorite", func(t *testing.T) {
		w, err := suite.makeRequest("DELETE", fmt.Sprintf("/api/recipes/%d/favorite", pancakesID), nil, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, w.Code)

		// Повторное удаление — уже ошибка состояния.
		w, err = suite.makeRequest("DELETE", fmt.Sprintf("/api/recipes/%d/favorite", pancakesID), nil, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("GET /recipes/download_shopping_cart", func(t *testing.T) {
		for _, id := range []int64{pancakesID, breadID} {
			w, err := suite.makeRequest("POST", fmt.Sprintf("/api/recipes/%d/shopping_cart", id), nil, token)
			require.NoError(t, err)
			require.Equal(t, http.StatusCreated, w.Code)
		}

		w, err := suite.makeRequest("GET", "/api/recipes/download_shopping_cart", nil, token)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), `buyershopping_cart.txt`)

		// Мука из двух рецептов суммируется в одну строку.
		body := w.Body.String()
		assert.Contains(t, body, "мука\t150 г")
		assert.Contains(t, body, "яйцо\t2 шт.")
		assert.Equal(t, 2, strings.Count(body, "\n"))
	})

	t.Run("empty cart downloads empty document", func(t *testing.T) {
		for _, id := range []int64{pancakesID, breadID} {
			w, err := suite.makeRequest("DELETE", fmt.Sprintf("/api/recipes/%d/shopping_cart", id), nil, token)
			require.NoError(t, err)
			require.Equal(t, http.StatusNoContent, w.Code)
		}

		w, err := suite.makeRequest("GET", "/api/recipes/download_shopping_cart", nil, token)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "", w.Body.String())
	})
}

// =============================================================================
// Flow 4: подписки
// =============================================================================

func TestFlow4_Subscriptions(t *testing.T) {
	suite := setupTestSuite(t)
	tags, ingredients := suite.seedCatalog(t)

	readerID, readerToken := suite.registerUser(t, "reader", "reader@test.com")
	authorID, authorToken := suite.registerUser(t, "writer", "writer@test.com")

	// У автора есть рецепт для карточки в подписках.
	w, err := suite.makeRequest("POST", "/api/recipes", map[string]interface{}{
		"name":         "Фирменный плов",
		"text":         "...",
		"cooking_time": 90,
		"image":        testImage(),
		"tags":         []int64{tags[0].ID},
		"ingredients": []map[string]interface{}{
			{"id": ingredients[0].ID, "amount": 300},
		},
	}, authorToken)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	t.Run("POST /users/:id/subscribe", func(t *testing.T) {
		w, err := suite.makeRequest("POST", fmt.Sprintf("/api/users/%d/subscribe", authorID), nil, readerToken)
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		card := parseResponse(t, w).Data["author"].(map[string]interface{})
		assert.Equal(t, "writer", card["username"])
		assert.Equal(t, true, card["is_subscribed"])
		assert.Equal(t, float64(1), card["recipes_count"])
	})

	t.Run("POST subscribe to self", func(t *testing.T) {
		w, err := suite.makeRequest("POST", fmt.Sprintf("/api/users/%d/subscribe", readerID), nil, readerToken)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "SELF_SUBSCRIBE", parseResponse(t, w).Error.Code)
	})

	t.Run("POST subscribe twice", func(t *testing.T) {
		w, err := suite.makeRequest("POST", fmt.Sprintf("/api/users/%d/subscribe", authorID), nil, readerToken)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ALREADY_EXISTS", parseResponse(t, w).Error.Code)
	})

	t.Run("GET /users/subscriptions", func(t *testing.T) {
		w, err := suite.makeRequest("GET", "/api/users/subscriptions?recipes_limit=1", nil, readerToken)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		authors := parseResponse(t, w).Data["authors"].([]interface{})
		require.Len(t, authors, 1)

		card := authors[0].(map[string]interface{})
		assert.Equal(t, "writer", card["username"])
		assert.Len(t, card["recipes"].([]interface{}), 1)
	})

	t.Run("GET /users/:id shows is_subscribed", func(t *testing.T) {
		w, err := suite.makeRequest("GET", fmt.Sprintf("/api/users/%d", authorID), nil, readerToken)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		user := parseResponse(t, w).Data["user"].(map[string]interface{})
		assert.Equal(t, true, user["is_subscribed"])
	})

	t.Run("DELETE /users/:id/subscribe", func(t *testing.T) {
		w, err := suite.makeRequest("DELETE", fmt.Sprintf("/api/users/%d/subscribe", authorID), nil, readerToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w, err = suite.makeRequest("DELETE", fmt.Sprintf("/api/users/%d/subscribe", authorID), nil, readerToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}
