package response

import "github.com/gin-gonic/gin"

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// FieldErrors возвращает ошибку валидации с картой поле→сообщение,
// чтобы клиент мог подсветить конкретные поля формы.
func FieldErrors(c *gin.Context, statusCode int, code string, message string, fields map[string]string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"fields":  fields,
		},
	})
}
