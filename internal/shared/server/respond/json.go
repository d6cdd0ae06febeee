package respond

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Created answers 201 and points Location at the new resource.
func Created(c *gin.Context, location string, payload any) {
	if location != "" {
		c.Header("Location", location)
	}
	JSON(c, http.StatusCreated, payload)
}

// Page is the envelope of every list endpoint.
type Page[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// List writes one page of items. A nil slice goes out as [].
func List[T any](c *gin.Context, items []T, limit, offset int) {
	if items == nil {
		items = []T{}
	}
	OK(c, Page[T]{Items: items, Limit: limit, Offset: offset})
}

// Attachment streams a stored file back under its original name.
func Attachment(c *gin.Context, fileName, contentType string, size int64, body io.Reader) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, size, contentType, body, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": fileName}),
	})
}
