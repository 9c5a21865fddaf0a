package handler

import (
	"github.com/gin-gonic/gin"
)

// Bind decodes the JSON body into obj. On failure the error is attached as a
// bind error for the validation middleware and false is returned.
func Bind(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return false
	}
	return true
}
