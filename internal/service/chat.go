package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/xiaot623/gogo/chatclient/internal/adapter/response"
	"github.com/xiaot623/gogo/chatclient/internal/domain"
	"github.com/xiaot623/gogo/chatclient/internal/httpclient"
	"github.com/xiaot623/gogo/chatclient/internal/stream"
)

// Default paging for chat history.
const (
	DefaultPageNum  = 1
	DefaultPageSize = 10
)

// SendMessage starts a streaming chat turn.
func (s *Service) SendMessage(ctx context.Context, p stream.Params) (*stream.Handle, error) {
	return s.stream.Start(ctx, p)
}

// History lists the chat sessions, newest first.
func (s *Service) History(ctx context.Context) ([]domain.Session, error) {
	var sessions []domain.Session
	if err := s.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/session"}, &sessions); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// CreateSession creates a session and returns its id.
func (s *Service) CreateSession(ctx context.Context, title string) (int64, error) {
	if title == "" {
		title = domain.DefaultSessionTitle
	}
	var id int64
	err := s.client.Do(ctx, httpclient.Request{
		Method:    http.MethodPost,
		Path:      "/session",
		Query:     url.Values{"title": {title}},
		Transform: response.SessionCreate,
	}, &id)
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}
	return id, nil
}

// RenameSession retitles a session.
func (s *Service) RenameSession(ctx context.Context, id int64, title string) error {
	err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodPut,
		Path:   "/session",
		Query:  url.Values{"id": {strconv.FormatInt(id, 10)}, "title": {title}},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to rename session: %w", err)
	}
	return nil
}

// DeleteSession deletes a session.
func (s *Service) DeleteSession(ctx context.Context, id int64) error {
	err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodDelete,
		Path:   "/session/" + strconv.FormatInt(id, 10),
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// MessagesPage fetches one page of a session's messages, newest first.
// Non-positive paging values fall back to the defaults.
func (s *Service) MessagesPage(ctx context.Context, chatID string, pageNum, pageSize int) (*domain.MessagePage, error) {
	if pageNum <= 0 {
		pageNum = DefaultPageNum
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var page domain.MessagePage
	err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   "/message/session/" + url.PathEscape(chatID) + "/page",
		Query: url.Values{
			"pageNum":  {strconv.Itoa(pageNum)},
			"pageSize": {strconv.Itoa(pageSize)},
		},
	}, &page)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return &page, nil
}
