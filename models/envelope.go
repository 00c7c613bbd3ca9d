package models

import "encoding/json"

// Envelope is the response wrapper used by most remote API endpoints.
type Envelope struct {
	Result  bool            `json:"result"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
}

// MessageText returns message when the server sent it as a plain string.
func (e Envelope) MessageText() string {
	return MessageText(e.Message)
}

// MessageText decodes a "message" field that may be a string or an object.
func MessageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginData is the data payload of a successful login.
type LoginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         *User  `json:"user"`
}

// TokenPair is the data payload of POST /refresh-token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}
