package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"stratus/internal/api"
	"stratus/internal/session"
	"stratus/internal/ui/confirm"
)

// AuthService drives the account endpoints: login, register, change password
// and the local logout. Login and register share the strict code==1 success
// rule; change password follows the later in-range convention.
type AuthService struct {
	client  *api.Client
	session *session.Session
	dialog  *confirm.Dialog
	logger  *slog.Logger
}

func NewAuthService(client *api.Client, sess *session.Session, dialog *confirm.Dialog, logger *slog.Logger) *AuthService {
	return &AuthService{
		client:  client,
		session: sess,
		dialog:  dialog,
		logger:  logger.With("service", "AuthService"),
	}
}

type loginRequest struct {
	Credentials string `json:"credentials"`
	Password    string `json:"password"`
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type changePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// identityPayload is the data block login and register return. uid arrives as
// a number on current servers and as a string on older ones.
type identityPayload struct {
	Token    string     `json:"token"`
	Username string     `json:"username"`
	UID      flexString `json:"uid"`
	Avatar   string     `json:"avatar"`
	Email    string     `json:"email"`
}

// Login authenticates and persists the returned identity.
func (s *AuthService) Login(ctx context.Context, credentials, password string) error {
	s.logger.Debug("Starting Login operation", "credentials", credentials)

	env, err := s.client.Do(ctx, http.MethodPost, "/api/user/login", loginRequest{
		Credentials: credentials,
		Password:    password,
	})
	if err != nil {
		return err
	}
	if err := env.Accept(api.ExactlyOne); err != nil {
		return err
	}

	return s.adoptIdentity(env)
}

// Register creates the account and, like the original flow, immediately
// persists the returned identity so the user lands logged in.
func (s *AuthService) Register(ctx context.Context, username, email, password, confirmPassword string) error {
	s.logger.Debug("Starting Register operation", "username", username)

	env, err := s.client.Do(ctx, http.MethodPost, "/api/user/register", registerRequest{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: confirmPassword,
	})
	if err != nil {
		return err
	}
	if err := env.Accept(api.ExactlyOne); err != nil {
		return err
	}

	return s.adoptIdentity(env)
}

// ChangePassword rotates the account password. The outcome, success or
// business failure, is reported through the shared dialog.
func (s *AuthService) ChangePassword(ctx context.Context, oldPassword, password, confirmPassword string) error {
	s.logger.Debug("Starting ChangePassword operation")

	env, err := s.client.Do(ctx, http.MethodPost, "/api/user/change_password", changePasswordRequest{
		OldPassword:     oldPassword,
		Password:        password,
		ConfirmPassword: confirmPassword,
	})
	if err != nil {
		return err
	}
	if err := env.Accept(api.WithinRange); err != nil {
		s.dialog.Open(confirm.Request{Message: err.Error(), Kind: confirm.KindError})
		return err
	}

	s.dialog.Open(confirm.Request{Message: env.Message, Kind: confirm.KindSuccess})
	return nil
}

// Logout clears the persisted session. Purely local: the server keeps no
// session state worth revoking.
func (s *AuthService) Logout() error {
	s.logger.Debug("Starting Logout operation")
	return s.session.Logout()
}

func (s *AuthService) adoptIdentity(env *api.Envelope) error {
	var payload identityPayload
	if err := env.DecodeData(&payload); err != nil {
		return err
	}

	if err := s.session.Login(session.Identity{
		Token:    payload.Token,
		Username: payload.Username,
		UID:      string(payload.UID),
		Avatar:   payload.Avatar,
		Email:    payload.Email,
	}); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	return nil
}

// flexString decodes a JSON string or number into its plain string form.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(strconv.FormatFloat(n, 'f', -1, 64))
		return nil
	}
	if string(data) == "null" {
		*f = ""
		return nil
	}
	return fmt.Errorf("invalid string value: %s", data)
}
