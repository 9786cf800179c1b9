package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tekmiz/tekmiz-go/internal/model"
)

// apiError is the server's error envelope
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

// networkError wraps a transport-level failure into the taxonomy
func networkError(err error) error {
	return fmt.Errorf("%w: %v", model.ErrNetwork, err)
}

// classifyError maps an HTTP error response to the model taxonomy.
// The status code decides the class; the envelope's code refines auth
// failures into their machine-readable sub-codes.
func classifyError(status int, body []byte) error {
	var envelope errorResponse
	_ = json.Unmarshal(body, &envelope)
	code := envelope.Error.Code
	message := envelope.Error.Message

	switch status {
	case http.StatusNotFound:
		switch code {
		case "ACCOUNT_NOT_FOUND":
			return model.NewAuthError(model.AuthCodeAccountNotFound, message)
		case "RESOURCE_NOT_FOUND":
			return model.ErrResourceNotFound
		}
		return model.ErrPlaylistNotFound
	case http.StatusUnauthorized:
		return model.NewAuthError(model.AuthCodeInvalidCredentials, message)
	case http.StatusConflict:
		return model.NewAuthError(model.AuthCodeEmailExists, message)
	case http.StatusTooManyRequests:
		return model.NewAuthError(model.AuthCodeRateLimited, message)
	case http.StatusBadRequest:
		if message == "" {
			message = "bad request"
		}
		return model.ValidationError(message)
	default:
		if message != "" {
			return fmt.Errorf("HTTP %d: %s (%s)", status, message, code)
		}
		return fmt.Errorf("HTTP %d: %s", status, string(body))
	}
}
