package ingredient

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
	repo *repository.IngredientRepository
}

func NewHandler(repo *repository.IngredientRepository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	ingredients := api.Group("/ingredients")
	{
		ingredients.GET("", h.List)
		ingredients.GET("/:id", h.Get)
	}
}

// List возвращает ингредиенты с фильтром "начинается с" по имени
// (регистронезависимо) — автокомплит формы рецепта.
// @Summary		Список ингредиентов
// @Tags		Ингредиенты
// @Param		name	query	string	false	"Префикс имени"
// @Success		200	{object}	map[string]interface{}
// @Router		/ingredients [GET]
func (h *Handler) List(c *gin.Context) {
	ingredients, err := h.repo.List(c.Request.Context(), c.Query("name"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Не удалось получить ингредиенты")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ingredients": ingredients})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Некорректный id ингредиента")
		return
	}

	ing, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Ингредиент не найден")
			return
		}
		response.Error(c, http.StatusInternalServerError, "GET_FAILED", "Не удалось получить ингредиент")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ingredient": ing})
}
