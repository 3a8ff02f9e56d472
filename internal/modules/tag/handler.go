package tag

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"foodgram/internal/pkg/response"
	"foodgram/internal/repository"
)

// Handler — read-only эндпоинты тегов. Теги создаются администратором
// (seed/миграции), API их не изменяет.
type Handler struct {
	repo *repository.TagRepository
}

func NewHandler(repo *repository.TagRepository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	tags := api.Group("/tags")
	{
		tags.GET("", h.List)
		tags.GET("/:id", h.Get)
	}
}

// List возвращает все теги.
// @Summary		Список тегов
// @Tags		Теги
// @Success		200	{object}	map[string]interface{}
// @Router		/tags [GET]
func (h *Handler) List(c *gin.Context) {
	tags, err := h.repo.GetAll(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Не удалось получить теги")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tags": tags})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Некорректный id тега")
		return
	}

	t, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Тег не найден")
			return
		}
		response.Error(c, http.StatusInternalServerError, "GET_FAILED", "Не удалось получить тег")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tag": t})
}
