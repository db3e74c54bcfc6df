// Package domain defines the core domain models for the chat client.
package domain

// Mode selects the backend execution mode of a chat turn.
type Mode string

const (
	ModeLocal  Mode = "LOCAL"
	ModeOnline Mode = "ONLINE"
)

// ModeFor maps the boolean online switch used by callers to a Mode.
func ModeFor(online bool) Mode {
	if online {
		return ModeOnline
	}
	return ModeLocal
}

// SenderType is the normalized author of a chat message.
type SenderType string

const (
	SenderUser SenderType = "USER"
	SenderAI   SenderType = "AI"
)

// SenderTypeFor maps a backend role to a SenderType. Anything that is not
// "user" is attributed to the assistant.
func SenderTypeFor(role string) SenderType {
	if role == "user" {
		return SenderUser
	}
	return SenderAI
}

// StreamDone is the scripted end-of-stream sentinel. It is never delivered
// to a chunk sink.
const StreamDone = "[DONE]"
