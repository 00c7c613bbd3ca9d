package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"luxstay/models"
)

// Response is a buffered 2xx response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// Envelope decodes a {result, data, message} body. A result:false envelope
// becomes a *RejectedError. When data is not nil the data payload is
// decoded into it.
func (r *Response) Envelope(data any) (models.Envelope, error) {
	var env models.Envelope
	if err := r.JSON(&env); err != nil {
		return env, err
	}
	if !env.Result {
		return env, &RejectedError{Message: env.MessageText()}
	}
	if data != nil {
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return env, fmt.Errorf("%w: missing data", ErrMalformedResponse)
		}
		if err := json.Unmarshal(env.Data, data); err != nil {
			return env, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}
	return env, nil
}

// errorMessage extracts "message" or "error" from an error body.
func errorMessage(body []byte) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if msg := models.MessageText(payload.Message); msg != "" {
		return msg
	}
	return payload.Error
}
