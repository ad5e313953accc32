package response

import "github.com/gin-gonic/gin"

// Success writes the standard envelope {success: true, data: ...}.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

// Error writes {success: false, error: {code, message}}. Codes are
// stable identifiers the HTTP client can switch on.
func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
