package rest

import "github.com/gin-gonic/gin"

func pingHandler(c *gin.Context) {
	SuccessResponseContent(c, "pong")
}
