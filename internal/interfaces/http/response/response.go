package response

import (
	"github.com/gin-gonic/gin"
	domainerrors "talka.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends {error, err_code}. Errors that are not AppErrors become a generic 500;
// their text never reaches the client.
func Error(c *gin.Context, err error) {
	appErr, ok := domainerrors.As(err)
	if !ok {
		appErr = domainerrors.InternalError(err)
	}

	c.JSON(appErr.Status, gin.H{
		"error":    appErr.Message,
		"err_code": appErr.Code,
	})
}

// Abort is Error for middleware: it also stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
