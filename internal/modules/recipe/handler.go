package recipe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"foodgram/internal/pkg/response"
	"foodgram/internal/pkg/validator"
	"foodgram/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterOptionalRoutes — чтение доступно анониму; от токена зависят
// только вычисляемые поля и фильтры "моё избранное"/"моя корзина".
func (h *Handler) RegisterOptionalRoutes(api *gin.RouterGroup) {
	api.GET("/recipes", h.List)
	api.GET("/recipes/:id", h.Get)
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.POST("/recipes", h.Create)
	protected.PATCH("/recipes/:id", h.Update)
	protected.DELETE("/recipes/:id", h.Delete)

	protected.GET("/recipes/download_shopping_cart", h.DownloadShoppingCart)

	protected.POST("/recipes/:id/favorite", h.AddFavorite)
	protected.DELETE("/recipes/:id/favorite", h.RemoveFavorite)
	protected.POST("/recipes/:id/shopping_cart", h.AddToCart)
	protected.DELETE("/recipes/:id/shopping_cart", h.RemoveFromCart)
}

// List возвращает страницу рецептов с фильтрами.
// @Summary		Список рецептов
// @Description	Фильтры соединяются по AND: tags (несколько слагов, OR между ними), author, is_favorited=1/0, is_in_shopping_cart=1/0. Для анонима фильтры по избранному/корзине дают пустую выборку.
// @Tags		Рецепты
// @Param		tags	query	[]string	false	"Слаги тегов"
// @Param		author	query	int			false	"id автора"
// @Param		is_favorited			query	string	false	"1 или 0"
// @Param		is_in_shopping_cart	query	string	false	"1 или 0"
// @Success		200	{object}	map[string]interface{}
// @Router		/recipes [GET]
func (h *Handler) List(c *gin.Context) {
	page, limit := pagination(c)

	f := repository.RecipeFilters{
		TagSlugs: c.QueryArray("tags"),
		ViewerID: c.GetInt64("user_id"),
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}
	if author := c.Query("author"); author != "" {
		if id, err := strconv.ParseInt(author, 10, 64); err == nil {
			f.AuthorID = id
		}
	}
	f.Favorited = boolFlag(c.Query("is_favorited"))
	f.InCart = boolFlag(c.Query("is_in_shopping_cart"))

	recipes, total, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Не удалось получить рецепты")
		return
	}

	response.Success(c, http.StatusOK, RecipeListResponse{
		Recipes:    recipes,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (int(total) + limit - 1) / limit,
	})
}

func (h *Handler) Get(c *gin.Context) {
	recipeID, ok := paramID(c)
	if !ok {
		return
	}

	view, err := h.service.Get(c.Request.Context(), c.GetInt64("user_id"), recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Рецепт не найден")
			return
		}
		response.Error(c, http.StatusInternalServerError, "GET_FAILED", "Не удалось получить рецепт")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"recipe": view})
}

// Create создаёт рецепт с вложенными тегами и ингредиентами.
// @Summary		Создать рецепт
// @Description	Валидация all-or-nothing: несуществующий id тега или ингредиента отклоняет весь запрос, ничего не сохраняется. Картинка — data:image/...;base64. Автор — всегда автор запроса.
// @Tags		Рецепты
// @Security	BearerAuth
// @Param		request	body	CreateRecipeRequest	true	"Рецепт"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{} "Ошибка валидации"
// @Router		/recipes [POST]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Некорректное тело запроса")
		return
	}
	if fields := validator.Validate(&req); fields != nil {
		response.FieldErrors(c, http.StatusBadRequest, "VALIDATION_ERROR", "Ошибка валидации", fields)
		return
	}

	view, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		h.writeError(c, err, "Не удалось создать рецепт")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"recipe": view})
}

func (h *Handler) Update(c *gin.Context) {
	recipeID, ok := paramID(c)
	if !ok {
		return
	}

	var req UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Некорректное тело запроса")
		return
	}
	if fields := validator.Validate(&req); fields != nil {
		response.FieldErrors(c, http.StatusBadRequest, "VALIDATION_ERROR", "Ошибка валидации", fields)
		return
	}

	view, err := h.service.Update(c.Request.Context(), c.GetInt64("user_id"), recipeID, req)
	if err != nil {
		h.writeError(c, err, "Не удалось обновить рецепт")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"recipe": view})
}

func (h *Handler) Delete(c *gin.Context) {
	recipeID, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.GetInt64("user_id"), recipeID); err != nil {
		h.writeError(c, err, "Не удалось удалить рецепт")
		return
	}
	c.Status(http.StatusNoContent)
}

/* ---------- TOGGLES ---------- */

func (h *Handler) AddFavorite(c *gin.Context) {
	h.addPair(c, h.service.AddFavorite, "Этот рецепт уже в избранном")
}

func (h *Handler) RemoveFavorite(c *gin.Context) {
	h.removePair(c, h.service.RemoveFavorite, "Рецепта нет в избранном")
}

func (h *Handler) AddToCart(c *gin.Context) {
	h.addPair(c, h.service.AddToCart, "Этот рецепт уже в корзине")
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	h.removePair(c, h.service.RemoveFromCart, "Рецепта нет в корзине")
}

func (h *Handler) addPair(c *gin.Context, add func(ctx context.Context, userID, recipeID int64) (*ShortRecipeResponse, error), conflictMsg string) {
	recipeID, ok := paramID(c)
	if !ok {
		return
	}

	short, err := add(c.Request.Context(), c.GetInt64("user_id"), recipeID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Рецепт не найден")
		case errors.Is(err, repository.ErrPairExists):
			response.Error(c, http.StatusBadRequest, "ALREADY_EXISTS", conflictMsg)
		default:
			response.Error(c, http.StatusInternalServerError, "ADD_FAILED", "Не удалось выполнить операцию")
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"recipe": short})
}

func (h *Handler) removePair(c *gin.Context, remove func(ctx context.Context, userID, recipeID int64) error, missingMsg string) {
	recipeID, ok := paramID(c)
	if !ok {
		return
	}

	if err := remove(c.Request.Context(), c.GetInt64("user_id"), recipeID); err != nil {
		if errors.Is(err, repository.ErrPairNotFound) {
			response.Error(c, http.StatusBadRequest, "NOT_IN_RELATION", missingMsg)
			return
		}
		response.Error(c, http.StatusInternalServerError, "REMOVE_FAILED", "Не удалось выполнить операцию")
		return
	}
	c.Status(http.StatusNoContent)
}

/* ---------- DOWNLOAD ---------- */

// DownloadShoppingCart отдаёт текстовый отчёт по корзине вложением.
// @Summary		Скачать список покупок
// @Description	Одна строка на ингредиент: имя, TAB, суммарное количество и единица измерения. Пустая корзина — пустой файл.
// @Tags		Рецепты
// @Security	BearerAuth
// @Produce		plain
// @Success		200	{string}	string
// @Router		/recipes/download_shopping_cart [GET]
func (h *Handler) DownloadShoppingCart(c *gin.Context) {
	userID := c.GetInt64("user_id")

	report, err := h.service.ShoppingCartReport(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "REPORT_FAILED", "Не удалось сформировать список покупок")
		return
	}
	filename, err := h.service.ReportFilename(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "REPORT_FAILED", "Не удалось сформировать список покупок")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(report))
}

/* ---------- HELPERS ---------- */

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Рецепт не найден")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Изменять рецепт может только автор")
	case errors.Is(err, ErrTagsNotFound):
		response.FieldErrors(c, http.StatusBadRequest, "VALIDATION_ERROR", "Ошибка валидации",
			map[string]string{"tags": "Заданы отсутствующие теги"})
	case errors.Is(err, ErrIngredientsNotFound):
		response.FieldErrors(c, http.StatusBadRequest, "VALIDATION_ERROR", "Ошибка валидации",
			map[string]string{"ingredients": "Заданы отсутствующие ингредиенты"})
	case errors.Is(err, ErrInvalidImage), errors.Is(err, ErrImageRequired):
		response.FieldErrors(c, http.StatusBadRequest, "VALIDATION_ERROR", "Ошибка валидации",
			map[string]string{"image": "Некорректная картинка"})
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", fallback)
	}
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Некорректный id рецепта")
		return 0, false
	}
	return id, true
}

func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "6"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 6
	}
	return page, limit
}

// boolFlag разбирает тристейт '1'/'0' (допускаем и true/false);
// пустое или нераспознанное значение — фильтр не задан.
func boolFlag(v string) *bool {
	switch v {
	case "1", "true", "True":
		b := true
		return &b
	case "0", "false", "False":
		b := false
		return &b
	}
	return nil
}
