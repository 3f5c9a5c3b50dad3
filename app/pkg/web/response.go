package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

/*
Response envelope. Code carries the stable machine-readable error code; the
HTTP status carries the transport semantics.
*/

// Response response body
type Response struct {
	Code    string      `json:"code"`    // stable error code, "ok" on success
	Message string      `json:"message"` // human-readable detail
	Data    interface{} `json:"data"`    // payload
}

// Success 200
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		"ok",
		"ok",
		data,
	})
}

// Created 201, new resource
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		"ok",
		"created",
		data,
	})
}

// ParamsError 422, validation failure
func ParamsError(c *gin.Context, code, msg string) {
	c.JSON(http.StatusUnprocessableEntity, Response{
		code,
		msg,
		"",
	})
}

// Conflict 409, write rejected to protect an invariant
func Conflict(c *gin.Context, code, msg string) {
	c.JSON(http.StatusConflict, Response{
		code,
		msg,
		"",
	})
}

// Gone 410, session expired
func Gone(c *gin.Context, code, msg string) {
	c.JSON(http.StatusGone, Response{
		code,
		msg,
		"",
	})
}

// InternalError 500
func InternalError(c *gin.Context, code, msg string) {
	c.JSON(http.StatusInternalServerError, Response{
		code,
		msg,
		"",
	})
}

// NotFoundResource 404
func NotFoundResource(c *gin.Context, code, msg string) {
	c.JSON(http.StatusNotFound, Response{
		code,
		msg,
		"",
	})
}
