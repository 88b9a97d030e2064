package util

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
)

// FieldErrorResponse describes why a single field was rejected.
type FieldErrorResponse struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type ErrorResponse struct {
	Success   bool                 `json:"success"`
	Code      int                  `json:"code"`
	Error     string               `json:"error"`
	Fields    []FieldErrorResponse `json:"fields,omitempty"`
	Timestamp string               `json:"timestamp"`
}

type SuccessResponse struct {
	Success   bool   `json:"success"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

func RespondJSON(c *gin.Context, statusCode int, message any) {
	if statusCode >= 400 {
		errorResponse := ErrorResponse{
			Success:   false,
			Code:      statusCode,
			Error:     constants.ErrMsgInternalServerError,
			Timestamp: time.Now().Format(time.RFC3339),
		}

		switch err := message.(type) {
		case validator.ValidationErrors:
			errorResponse.Error = constants.ErrMsgValidationFailed
			for _, e := range err {
				errorResponse.Fields = append(errorResponse.Fields, FieldErrorResponse{
					Field:  e.Field(),
					Reason: validationMessage(e),
				})
			}

		case *json.UnmarshalTypeError:
			errorResponse.Error = constants.ErrMsgJSONTypeMismatch
			errorResponse.Fields = append(errorResponse.Fields, FieldErrorResponse{
				Field:  err.Field,
				Reason: fmt.Sprintf("Expected type %s but got %s", err.Type.String(), err.Value),
			})

		case *json.SyntaxError:
			errorResponse.Error = constants.ErrMsgJSONSyntaxError
			errorResponse.Fields = append(errorResponse.Fields, FieldErrorResponse{
				Field:  "JSON",
				Reason: err.Error(),
			})

		case *HTTPError:
			errorResponse.Error = err.Message

		case error:
			errMsg := err.Error()
			switch {
			case errMsg == "EOF":
				errorResponse.Error = constants.ErrMsgJSONSyntaxError
			case strings.Contains(errMsg, "json: cannot unmarshal"):
				errorResponse.Error = constants.ErrMsgJSONTypeMismatch
				errorResponse.Fields = append(errorResponse.Fields, FieldErrorResponse{
					Field:  "JSON",
					Reason: errMsg,
				})
			case statusCode >= http.StatusInternalServerError:
				// internal details never reach the client
			default:
				errorResponse.Error = errMsg
			}

		case string:
			errorResponse.Error = err

		case map[string]any:
			errorResponse.Error = constants.ErrMsgBadRequest
			for k, v := range err {
				errorResponse.Fields = append(errorResponse.Fields, FieldErrorResponse{
					Field:  k,
					Reason: fmt.Sprintf("%v", v),
				})
			}

		default:
			errorResponse.Error = fmt.Sprintf("%v", message)
		}
		c.JSON(statusCode, errorResponse)
		c.Abort()
		return
	}

	successResponse := SuccessResponse{
		Success:   true,
		Code:      statusCode,
		Message:   "OK",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	switch msg := message.(type) {
	case string:
		successResponse.Message = msg
	case gin.H:
		if m, ok := msg["message"].(string); ok {
			successResponse.Message = m
			delete(msg, "message")
		}
		if len(msg) > 0 {
			successResponse.Data = msg
		}
	default:
		successResponse.Data = msg
		val := reflect.ValueOf(msg)
		if val.Kind() == reflect.Ptr {
			val = val.Elem()
		}
		if val.Kind() == reflect.Struct {
			if field := val.FieldByName("Message"); field.IsValid() && field.Kind() == reflect.String && field.String() != "" {
				successResponse.Message = field.String()
			}
		}
	}

	c.IndentedJSON(statusCode, successResponse)
}

// RespondError answers with the status carried by an *HTTPError, or 500.
func RespondError(c *gin.Context, err error) {
	if httpErr, ok := AsHTTPError(err); ok {
		RespondJSON(c, httpErr.Status, httpErr)
		return
	}
	RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required."
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + "."
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + "."
	case "gte":
		return fe.Field() + " must be greater than or equal to " + fe.Param() + "."
	case "lte":
		return fe.Field() + " must be less than or equal to " + fe.Param() + "."
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param() + "."
	case "numeric":
		return fe.Field() + " must be numeric."
	case "oneof":
		return fe.Field() + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ") + "."
	case "len":
		return fe.Field() + " must have length " + fe.Param() + "."
	case "datetime":
		return fe.Field() + " must match the format " + fe.Param() + "."
	default:
		return fe.Field() + " is invalid."
	}
}
