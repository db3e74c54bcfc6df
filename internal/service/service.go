// Package service exposes the chat, sign-in and admin API calls.
package service

import (
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/chatclient/internal/auth"
	"github.com/xiaot623/gogo/chatclient/internal/httpclient"
	"github.com/xiaot623/gogo/chatclient/internal/stream"
)

// CredentialStore is where a successful login is recorded.
type CredentialStore interface {
	auth.CredentialSource
	SetToken(token string) error
	ClearToken() error
	Role() string
	SetRole(role string)
	ClearRole()
}

type Service struct {
	client      *httpclient.Client
	stream      *stream.Session
	credentials CredentialStore
	logger      *zap.Logger
}

func New(client *httpclient.Client, streamSession *stream.Session, credentials CredentialStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:      client,
		stream:      streamSession,
		credentials: credentials,
		logger:      logger,
	}
}
