package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/xiaot623/gogo/chatclient/internal/domain"
	"github.com/xiaot623/gogo/chatclient/internal/httpclient"
)

// ListUsers lists accounts. Admin only.
func (s *Service) ListUsers(ctx context.Context, pageNum, pageSize int) (*domain.AdminUserPage, error) {
	if pageNum <= 0 {
		pageNum = DefaultPageNum
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var page domain.AdminUserPage
	err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   "/user/admin",
		Query: url.Values{
			"pageNum":  {strconv.Itoa(pageNum)},
			"pageSize": {strconv.Itoa(pageSize)},
		},
	}, &page)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &page, nil
}

// DeleteUser deletes an account. Admin only.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodDelete,
		Path:   "/user/admin/" + url.PathEscape(userID),
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
