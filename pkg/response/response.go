package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Notification variants.
const (
	VariantDefault     = "default"
	VariantDestructive = "destructive"
)

// Notification is the user-visible confirmation or error message attached to a mutation result.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Variant     string `json:"variant"`
}

// Body is the standard API response envelope.
type Body struct {
	Success      bool          `json:"success"`
	Data         interface{}   `json:"data,omitempty"`
	Error        string        `json:"error,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
}

// Notice builds a default (confirmation) notification.
func Notice(title, description string) *Notification {
	return &Notification{Title: title, Description: description, Variant: VariantDefault}
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// OKWithNotice sends 200 with data and a confirmation notification.
func OKWithNotice(c *gin.Context, data interface{}, n *Notification) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data, Notification: n})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// CreatedWithNotice sends 201 with data and a confirmation notification.
func CreatedWithNotice(c *gin.Context, data interface{}, n *Notification) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data, Notification: n})
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Fail sends an error with a destructive notification whose description is the error message.
func Fail(c *gin.Context, status int, err string) {
	c.JSON(status, Body{
		Success:      false,
		Error:        err,
		Notification: &Notification{Title: "Error", Description: err, Variant: VariantDestructive},
	})
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	Fail(c, http.StatusBadRequest, err)
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, err string) {
	c.JSON(http.StatusUnauthorized, Body{Success: false, Error: err})
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, err string) {
	c.JSON(http.StatusForbidden, Body{Success: false, Error: err})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	Fail(c, http.StatusNotFound, err)
}

// Conflict sends 409.
func Conflict(c *gin.Context, err string) {
	Fail(c, http.StatusConflict, err)
}

// TooManyRequests sends 429.
func TooManyRequests(c *gin.Context, err string) {
	Fail(c, http.StatusTooManyRequests, err)
}

// ServiceUnavailable sends 503.
func ServiceUnavailable(c *gin.Context, err string) {
	c.JSON(http.StatusServiceUnavailable, Body{Success: false, Error: err})
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	Fail(c, http.StatusInternalServerError, err)
}
