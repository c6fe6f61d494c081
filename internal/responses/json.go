package responses

import (
	"errors"

	"github.com/gin-gonic/gin"

	"sourcingagent/backend/internal/apperrors"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
}

func Success(c *gin.Context, statusCode int, data interface{}, message string) {
	c.JSON(statusCode, APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

func Fail(c *gin.Context, statusCode int, err error, message string) {
	resp := APIResponse{
		Status:  "error",
		Message: message,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(statusCode, resp)
}

// Error maps an application error to its HTTP status and includes the
// machine-checkable kind in the body.
func Error(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)

	resp := APIResponse{
		Status: "error",
		Kind:   string(kind),
	}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		resp.Message = appErr.Message
		if appErr.Err != nil {
			resp.Error = appErr.Err.Error()
		}
	} else {
		resp.Message = "internal server error"
		resp.Error = err.Error()
	}

	c.JSON(apperrors.HTTPStatus(kind), resp)
}
