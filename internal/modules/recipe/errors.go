package recipe

import "errors"

var (
	// ErrTagsNotFound / ErrIngredientsNotFound — в payload есть id, которых
	// нет в справочниках. Запись не применяется даже частично.
	ErrTagsNotFound        = errors.New("unknown tag ids")
	ErrIngredientsNotFound = errors.New("unknown ingredient ids")

	// ErrImageRequired — при создании рецепта картинка обязательна.
	ErrImageRequired = errors.New("image is required")
	// ErrInvalidImage — битый base64/data-URI, не паника, а ошибка валидации.
	ErrInvalidImage = errors.New("invalid image payload")

	// ErrForbidden — PATCH/DELETE не автором рецепта.
	ErrForbidden = errors.New("forbidden")
)
