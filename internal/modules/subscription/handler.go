package subscription

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"foodgram/internal/pkg/response"
	"foodgram/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/users/subscriptions", h.List)
	protected.POST("/users/:id/subscribe", h.Subscribe)
	protected.DELETE("/users/:id/subscribe", h.Unsubscribe)
}

// List возвращает авторов, на которых подписан текущий пользователь.
// @Summary		Мои подписки
// @Tags		Подписки
// @Security	BearerAuth
// @Param		recipes_limit	query	int	false	"Сколько рецептов автора вернуть в карточке"
// @Success		200	{object}	map[string]interface{}
// @Router		/users/subscriptions [GET]
func (h *Handler) List(c *gin.Context) {
	userID := c.GetInt64("user_id")
	page, limit := pagination(c)

	authors, total, err := h.service.ListSubscriptions(
		c.Request.Context(), userID, limit, (page-1)*limit, recipesLimit(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Не удалось получить подписки")
		return
	}

	response.Success(c, http.StatusOK, SubscriptionListResponse{
		Authors:    authors,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (int(total) + limit - 1) / limit,
	})
}

// Subscribe подписывает текущего пользователя на автора.
// @Summary		Подписаться на автора
// @Tags		Подписки
// @Security	BearerAuth
// @Param		id	path	int	true	"id автора"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{} "Уже подписаны или подписка на себя"
// @Failure		404	{object}	map[string]interface{} "Автор не найден"
// @Router		/users/{id}/subscribe [POST]
func (h *Handler) Subscribe(c *gin.Context) {
	userID := c.GetInt64("user_id")
	authorID, ok := paramID(c)
	if !ok {
		return
	}

	author, err := h.service.Subscribe(c.Request.Context(), userID, authorID, recipesLimit(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrSelfSubscribe):
			response.Error(c, http.StatusBadRequest, "SELF_SUBSCRIBE", "На самого себя не подписываемся")
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Автор не найден")
		case errors.Is(err, repository.ErrPairExists):
			response.Error(c, http.StatusBadRequest, "ALREADY_EXISTS", "На этого автора уже подписаны")
		default:
			response.Error(c, http.StatusInternalServerError, "SUBSCRIBE_FAILED", "Не удалось оформить подписку")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"author": author})
}

func (h *Handler) Unsubscribe(c *gin.Context) {
	userID := c.GetInt64("user_id")
	authorID, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.service.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		if errors.Is(err, repository.ErrPairNotFound) {
			response.Error(c, http.StatusBadRequest, "NOT_SUBSCRIBED", "Подписки нет")
			return
		}
		response.Error(c, http.StatusInternalServerError, "UNSUBSCRIBE_FAILED", "Не удалось отписаться")
		return
	}
	c.Status(http.StatusNoContent)
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Некорректный id автора")
		return 0, false
	}
	return id, true
}

func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

// recipesLimit — необязательное усечение списка рецептов в карточке автора.
// Нечисловое значение игнорируется (полный список).
func recipesLimit(c *gin.Context) int {
	if raw := c.Query("recipes_limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return 0
}
