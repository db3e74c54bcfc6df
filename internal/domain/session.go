package domain

import "time"

// TimeLayout is the locale-style layout used for session timestamps.
const TimeLayout = "2006/1/2 15:04:05"

// DefaultSessionTitle is used when a session is created without a title.
const DefaultSessionTitle = "新对话"

// Session represents a chat conversation.
type Session struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	CreateTime  string `json:"createTime"`
	UpdateTime  string `json:"updateTime"`
	LastMessage string `json:"lastMessage"`
}

// FormatTime renders t in the session timestamp layout.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}
