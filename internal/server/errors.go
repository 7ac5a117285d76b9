package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/farol-inclusivo/farol-matcher/internal/farol"
)

const (
	codeBadRequest    = "bad_request"
	codeUnauthorized  = "unauthorized"
	codeUpstreamError = "upstream_error"
	codeUnavailable   = "unavailable"
	codeInternal      = "internal"
)

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Details   any    `json:"details,omitempty"`
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func abortWithError(c *gin.Context, status int, code, message string, details any) {
	c.AbortWithStatusJSON(status, errorResponse{
		Code:      code,
		Message:   message,
		RequestID: c.GetString(ctxRequestID),
		Details:   details,
	})
}

// badRequest reports binding failures, listing validator rule violations when present.
func badRequest(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		abortWithError(c, http.StatusBadRequest, codeBadRequest, err.Error(), nil)
		return
	}

	details := make([]fieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		details = append(details, fieldError{Field: fe.Namespace(), Rule: fe.Tag(), Param: fe.Param()})
	}
	abortWithError(c, http.StatusBadRequest, codeBadRequest, "request validation failed", details)
}

func upstreamError(c *gin.Context, err error) {
	var apiErr *farol.APIError
	switch {
	case errors.Is(err, farol.ErrUnauthorized):
		abortWithError(c, http.StatusUnauthorized, codeUnauthorized, "farol api rejected the token", nil)
	case errors.As(err, &apiErr):
		abortWithError(c, http.StatusBadGateway, codeUpstreamError, err.Error(), map[string]int{"upstream_status": apiErr.StatusCode})
	default:
		abortWithError(c, http.StatusBadGateway, codeUpstreamError, err.Error(), nil)
	}
}
