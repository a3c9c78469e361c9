package httperr

import (
	"github.com/gin-gonic/gin"
)

// Response is the error envelope every endpoint writes. Code carries a
// machine-readable reason for 409/410 responses so clients can branch
// without parsing the message.
type Response struct {
	Status int    `json:"-"`
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
}

// AbortWithError writes the error envelope and records the original error
// on the context for the logging middleware.
func AbortWithError(c *gin.Context, status int, err error, msg string) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status, Error: msg}

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}
