package eventsource

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, input string) []Event {
	t.Helper()
	r := NewReader(strings.NewReader(input))
	var events []Event
	for {
		ev, err := r.Next()
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
}

func TestReaderMultilineData(t *testing.T) {
	input := "event: delta\n" +
		"data: first line\n" +
		"data: second line\n\n"

	events := readAll(t, input)
	require.Len(t, events, 1)
	assert.Equal(t, "delta", events[0].Event)
	assert.Equal(t, "first line\nsecond line", events[0].Data)
}

func TestReaderKeepsInnerSpaces(t *testing.T) {
	events := readAll(t, "data:   indented\n\ndata:x\n\n")
	require.Len(t, events, 2)
	assert.Equal(t, "  indented", events[0].Data)
	assert.Equal(t, "x", events[1].Data)
}

func TestReaderCommentsAndTrailingEvent(t *testing.T) {
	input := ": keepalive\n\n" +
		"id: 7\n" +
		"data: \"tail\""

	events := readAll(t, input)
	require.Len(t, events, 1)
	assert.Equal(t, "7", events[0].ID)
	assert.Equal(t, `"tail"`, events[0].Data)
}

func TestReaderCRLF(t *testing.T) {
	events := readAll(t, "data: a\r\n\r\ndata: b\r\n\r\n")
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].Data)
	assert.Equal(t, "b", events[1].Data)
}

func TestNormalizePayload(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json string", `"hello\nworld"`, "hello\nworld"},
		{"json string crlf", `"a\r\nb"`, "a\nb"},
		{"json number", `42`, "42"},
		{"json object", `{"a":1}`, `{"a":1}`},
		{"raw text", `not json`, "not json"},
		{"nested data prefix", `"data: x\ndata:y"`, "x\ny"},
		{"data prefix mid line kept", `"x data: y"`, "x data: y"},
		{"empty string", `""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePayload(tt.in))
		})
	}
}
