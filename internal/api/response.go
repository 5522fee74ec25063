package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/errcode"
)

func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// ErrorWithCode 附带 errcode 中的错误码，供客户端区分可重试的失败。
func ErrorWithCode(c *gin.Context, status int, msg string, code int) {
	c.JSON(status, gin.H{"error": msg, "code": code})
}

func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, msg) }
func NotFound(c *gin.Context, msg string) {
	ErrorWithCode(c, http.StatusNotFound, msg, errcode.ResourceMissing)
}
func Conflict(c *gin.Context, msg string)        { Error(c, http.StatusConflict, msg) }
func TooLarge(c *gin.Context, msg string)        { Error(c, http.StatusRequestEntityTooLarge, msg) }
func TooManyRequests(c *gin.Context, msg string) { Error(c, http.StatusTooManyRequests, msg) }
func Unavailable(c *gin.Context, msg string)     { Error(c, http.StatusServiceUnavailable, msg) }
func Internal(c *gin.Context, msg string)        { Error(c, http.StatusInternalServerError, msg) }
