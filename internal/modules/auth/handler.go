package auth

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"foodgram/internal/pkg/response"
)

// Handler manages all HTTP interactions for users and authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(api *gin.RouterGroup) {
	api.POST("/users", h.Register)
	api.POST("/auth/token/login", h.Login)
	api.POST("/auth/token/logout", h.Logout)
}

// RegisterOptionalRoutes — эндпоинты, доступные анониму, но зависящие от
// наличия пользователя в контексте (is_subscribed).
func (h *Handler) RegisterOptionalRoutes(api *gin.RouterGroup) {
	api.GET("/users", h.ListUsers)
	api.GET("/users/:id", h.GetUser)
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/users/me", h.GetMe)
	protected.POST("/users/set_password", h.SetPassword)
}

// Register создаёт аккаунт пользователя.
// @Summary		Зарегистрировать пользователя
// @Tags		Пользователи
// @Param		request	body	RegisterRequest	true	"email, username, first_name, last_name, password"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{} "Ошибка валидации"
// @Router		/users [POST]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Некорректное тело запроса")
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailAlreadyExists):
			response.FieldErrors(c, http.StatusBadRequest, "VALIDATION_ERROR", "Ошибка валидации",
				map[string]string{"email": "Пользователь с таким email уже существует"})
		case errors.Is(err, ErrUsernameAlreadyExists):
			response.FieldErrors(c, http.StatusBadRequest, "VALIDATION_ERROR", "Ошибка валидации",
				map[string]string{"username": "Пользователь с таким username уже существует"})
		case errors.Is(err, ErrInvalidUsername):
			response.FieldErrors(c, http.StatusBadRequest, "VALIDATION_ERROR", "Ошибка валидации",
				map[string]string{"username": "Допустимы только буквы, цифры и @/./+/-/_"})
		default:
			response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Не удалось создать пользователя")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user": ToUserResponse(user, false),
	})
}

// Login выдаёт JWT по email и паролю.
// @Summary		Получить токен
// @Tags		Пользователи
// @Param		request	body	LoginRequest	true	"email, password"
// @Success		200	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{} "Неверные учётные данные"
// @Router		/auth/token/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Некорректное тело запроса")
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Неверный email или пароль")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Не удалось выполнить вход")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":  ToUserResponse(user, false),
		"token": token,
	})
}

// Logout — JWT stateless, серверу нечего инвалидировать.
func (h *Handler) Logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListUsers(c *gin.Context) {
	page, limit := pagination(c)
	viewerID := c.GetInt64("user_id")

	users, total, err := h.service.ListUsers(c.Request.Context(), viewerID, limit, (page-1)*limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Не удалось получить пользователей")
		return
	}

	response.Success(c, http.StatusOK, UserListResponse{
		Users:      users,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	})
}

func (h *Handler) GetUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Некорректный id пользователя")
		return
	}
	viewerID := c.GetInt64("user_id")

	user, err := h.service.GetUser(c.Request.Context(), viewerID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Пользователь не найден")
			return
		}
		response.Error(c, http.StatusInternalServerError, "GET_FAILED", "Не удалось получить пользователя")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// GetMe возвращает профиль текущего пользователя.
// @Summary		Текущий пользователь
// @Tags		Пользователи
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{}
// @Router		/users/me [GET]
func (h *Handler) GetMe(c *gin.Context) {
	userID := c.GetInt64("user_id")

	user, err := h.service.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Пользователь не найден")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": ToUserResponse(user, false),
	})
}

func (h *Handler) SetPassword(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Некорректное тело запроса")
		return
	}

	if err := h.service.SetPassword(c.Request.Context(), userID, req); err != nil {
		switch {
		case errors.Is(err, ErrWrongPassword):
			response.FieldErrors(c, http.StatusBadRequest, "VALIDATION_ERROR", "Ошибка валидации",
				map[string]string{"current_password": "Неверный пароль"})
		case errors.Is(err, ErrSamePassword):
			response.FieldErrors(c, http.StatusBadRequest, "VALIDATION_ERROR", "Ошибка валидации",
				map[string]string{"new_password": "Новый пароль совпадает с текущим"})
		default:
			response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Не удалось сменить пароль")
		}
		return
	}

	c.Status(http.StatusNoContent)
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

func totalPages(total int64, limit int) int {
	return (int(total) + limit - 1) / limit
}
