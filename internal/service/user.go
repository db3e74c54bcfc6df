package service

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/chatclient/internal/domain"
	"github.com/xiaot623/gogo/chatclient/internal/httpclient"
)

// Login signs in and records the token and role.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	var result domain.LoginResult
	err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/user/login",
		Body:   domain.LoginRequest{Email: email, Password: password},
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	if err := s.credentials.SetToken(result.Token); err != nil {
		return nil, err
	}
	s.credentials.SetRole(result.Role)
	s.logger.Info("signed in", zap.String("email", email), zap.String("role", result.Role))
	return &result, nil
}

// Register creates an account.
func (s *Service) Register(ctx context.Context, email, password, confirmPassword string) error {
	err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/user/register",
		Body: domain.RegisterRequest{
			Email:           email,
			Password:        password,
			ConfirmPassword: confirmPassword,
		},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to register: %w", err)
	}
	return nil
}

// Logout forgets the stored credential.
func (s *Service) Logout() error {
	s.credentials.ClearRole()
	return s.credentials.ClearToken()
}
