// Package auth signs the guest in and out and decides whether a protected
// view may mount.
package auth

import (
	"context"
	"errors"
	"net/http"

	"luxstay/models"
	"luxstay/services/api"
	"luxstay/services/session"
	"luxstay/utils"

	"go.uber.org/zap"
)

const (
	// MainView is where a successful login lands.
	MainView = "/main"

	MsgInvalidCredentials = "Invalid credentials"
	MsgLoginFailed        = "Login failed"
	MsgMissingFields      = "Phone and password are required"
)

var (
	ErrInvalidInput       = errors.New("auth: phone and password are required")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

// ViewCloser releases per-view state on logout.
type ViewCloser interface {
	CloseAll()
}

// AuthService defines the sign-in flow.
type AuthService interface {
	Login(ctx context.Context, req models.LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context) string
}

// LoginResult tells the caller who signed in and where to go next.
type LoginResult struct {
	User *models.User `json:"user"`
	Next string       `json:"next"`
}

// DefaultAuthService implements AuthService against the remote API.
type DefaultAuthService struct {
	Client *api.Client
	Store  session.Store
	Views  ViewCloser
	Logger *zap.Logger
}

func NewAuthService(client *api.Client, store session.Store, views ViewCloser, logger *zap.Logger) *DefaultAuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultAuthService{Client: client, Store: store, Views: views, Logger: logger}
}

// Login submits the credentials. On success the user and tokens are
// written to the session store; on any failure the store is left as it was.
func (s *DefaultAuthService) Login(ctx context.Context, req models.LoginRequest) (*LoginResult, error) {
	if err := utils.Validator().Struct(req); err != nil {
		return nil, &api.UserError{Message: MsgMissingFields, Err: ErrInvalidInput}
	}

	apiReq, err := api.NewRequest(http.MethodPost, "/auth/login", req)
	if err != nil {
		return nil, err
	}
	var data models.LoginData
	if err := s.Client.DoEnvelope(ctx, apiReq, &data); err != nil {
		var rejected *api.RejectedError
		if errors.As(err, &rejected) {
			s.Logger.Info("Login rejected", zap.String("phone", maskPhone(req.Phone)))
			return nil, &api.UserError{Message: MsgInvalidCredentials, Err: ErrInvalidCredentials}
		}
		s.Logger.Warn("Login failed", zap.String("phone", maskPhone(req.Phone)), zap.Error(err))
		return nil, api.Fail(err, MsgLoginFailed)
	}
	if data.AccessToken == "" {
		return nil, &api.UserError{Message: MsgInvalidCredentials, Err: ErrInvalidCredentials}
	}

	sess := models.Session{User: data.User, AccessToken: data.AccessToken, RefreshToken: data.RefreshToken}
	if err := s.Store.Save(ctx, sess); err != nil {
		s.Logger.Error("Failed to persist session", zap.Error(err))
		return nil, &api.UserError{Message: MsgLoginFailed, Err: err}
	}

	var userID int64
	if data.User != nil {
		userID = data.User.ID
	}
	s.Logger.Info("Guest signed in", zap.Int64("userID", userID), zap.Bool("refreshable", data.RefreshToken != ""))
	return &LoginResult{User: data.User, Next: MainView}, nil
}

// Logout drops all local session state and returns the entry view. It
// makes no network call.
func (s *DefaultAuthService) Logout(ctx context.Context) string {
	if s.Views != nil {
		s.Views.CloseAll()
	}
	if err := s.Store.Clear(ctx); err != nil {
		s.Logger.Error("Failed to clear session on logout", zap.Error(err))
	}
	s.Logger.Info("Guest signed out")
	return utils.EntryPath
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return "****" + phone[len(phone)-4:]
}
