package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/airbooking-modify/internal/domain"
	"github.com/gin-gonic/gin"
)

const msgInternal = "something went wrong, please try again"

type errorResponse struct {
	Error     string              `json:"error"`
	Code      string              `json:"code"`
	Field     string              `json:"field,omitempty"`
	Details   []domain.FieldError `json:"details,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

// respondError maps domain errors to HTTP responses. Unknown errors are
// logged by the request logger and answered with a generic message.
func respondError(c *gin.Context, err error) {
	resp := errorResponse{Error: err.Error(), RequestID: requestID(c)}
	status := http.StatusInternalServerError

	var verr domain.ValidationError
	switch {
	case errors.As(err, &verr):
		status, resp.Code = http.StatusUnprocessableEntity, "validation_error"
		resp.Error, resp.Field, resp.Details = verr.Msg, verr.Field, verr.Fields
	case domain.IsStateGate(err):
		status, resp.Code = http.StatusConflict, "not_allowed"
	case domain.IsConflict(err):
		status, resp.Code = http.StatusConflict, "conflict"
	case domain.IsNotFound(err):
		status, resp.Code = http.StatusNotFound, "not_found"
	case domain.IsForbidden(err):
		status, resp.Code = http.StatusForbidden, "forbidden"
	case domain.IsSubmission(err):
		status, resp.Code = http.StatusBadGateway, "submission_failed"
	default:
		resp.Code, resp.Error = "internal_error", msgInternal
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Error:     bindingMessage(err),
		Code:      "bad_request",
		RequestID: requestID(c),
	})
}
