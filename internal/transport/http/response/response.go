// Package response 统一线上 JSON 约定：失败一律 {"error": msg}，状态码用真实 HTTP 语义。
package response

import "github.com/gin-gonic/gin"

type ErrBody struct {
	Error string `json:"error"`
}

func Err(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrBody{Error: msg})
}

// AbortErr 中间件用：终止后续 handler
func AbortErr(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrBody{Error: msg})
}

func Msg(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}
