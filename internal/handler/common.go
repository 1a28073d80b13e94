package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FilmURI /films/:id 的路徑參數
type FilmURI struct {
	ID int `uri:"id" binding:"required,min=1"`
}

func BindUri(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindUri(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid film id",
		})
		return err
	}
	return nil
}
