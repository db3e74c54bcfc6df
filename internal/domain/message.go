package domain

// ChatMessage is a single message of a conversation as returned by the
// message page endpoint after normalization.
type ChatMessage struct {
	ID         int64      `json:"id,omitempty"`
	SessionID  int64      `json:"sessionId,omitempty"`
	Role       string     `json:"role,omitempty"`
	Content    string     `json:"content,omitempty"`
	SenderType SenderType `json:"senderType"`
	Contents   string     `json:"contents"`
	CreateTime string     `json:"createTime,omitempty"`
}

// MessagePage is one page of chat history, newest first.
type MessagePage struct {
	Records  []ChatMessage `json:"records"`
	Total    int           `json:"total"`
	PageNum  int           `json:"pageNum"`
	PageSize int           `json:"pageSize"`
}

// ChatRequest is the body of a streaming chat turn.
type ChatRequest struct {
	Message string `json:"message"`
}
