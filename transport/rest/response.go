package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response - envelope of every REST reply.
type Response struct {
	Success bool `json:"success"`
	Code    int  `json:"code"`
	Extras  any  `json:"extras"`
}

func NewResponse(success bool, code int, extras any) Response {
	return Response{
		Success: success,
		Code:    code,
		Extras:  extras,
	}
}

func SuccessResponse(c *gin.Context, extras any) {
	c.JSON(http.StatusOK, NewResponse(true, http.StatusOK, extras))
}

func SuccessResponseContent(c *gin.Context, content string) {
	SuccessResponse(c, gin.H{"content": content})
}

func ErrorResponse(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, NewResponse(false, code, gin.H{"message": message}))
}
