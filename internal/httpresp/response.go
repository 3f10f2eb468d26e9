package httpresp

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created answers 201 with a confirmation message and the new resource
// under key.
func Created(c *gin.Context, message, key string, v any) {
	c.JSON(http.StatusCreated, gin.H{"message": message, key: v})
}

func Updated(c *gin.Context, message, key string, v any) {
	c.JSON(http.StatusOK, gin.H{"message": message, key: v})
}

func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"message": message})
}
