package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/logging"
)

// Estructuras para respuestas
type ErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// respondError maps service errors onto status codes. Upstream and unknown
// errors are logged and answered with a generic message.
func respondError(c *gin.Context, fallback *zap.Logger, err error, publicMsg string) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ve.Message, Fields: ve.Fields})
	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	default:
		logging.FromContext(c.Request.Context(), fallback).Error(publicMsg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: publicMsg})
	}
}

func badRequest(c *gin.Context, msg string, fields ...string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Fields: fields})
}

// idRequest is the JSON body of delete calls.
type idRequest struct {
	ID string `json:"id"`
}

// targetID reads the record id from ?id= or, failing that, a JSON body.
func targetID(c *gin.Context) string {
	if id := c.Query("id"); id != "" {
		return id
	}
	var body idRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		return ""
	}
	return body.ID
}
