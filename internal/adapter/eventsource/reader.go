// Package eventsource reads server-sent event streams.
package eventsource

import (
	"bufio"
	"encoding/json"
	"io"
	"regexp"
	"strings"
)

const maxLineSize = 1024 * 1024

// Event represents a parsed SSE event.
type Event struct {
	Event string
	ID    string
	Data  string
}

// Reader pulls events off an SSE stream one at a time.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader creates a reader over r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: scanner}
}

// Next returns the next event. It returns io.EOF once the stream is
// exhausted.
func (r *Reader) Next() (Event, error) {
	var event Event
	var data []string
	seen := false

	for r.scanner.Scan() {
		line := r.scanner.Text()

		// Empty line marks end of event
		if line == "" {
			if seen {
				event.Data = strings.Join(data, "\n")
				return event, nil
			}
			continue
		}

		// Comments
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			event.Event = value
			seen = true
		case "data":
			data = append(data, value)
			seen = true
		case "id":
			event.ID = value
			seen = true
		}
	}

	if err := r.scanner.Err(); err != nil {
		return Event{}, err
	}

	// Handle any remaining event
	if seen {
		event.Data = strings.Join(data, "\n")
		return event, nil
	}
	return Event{}, io.EOF
}

var dataPrefix = regexp.MustCompile(`(?m)^data:\s?`)

// NormalizePayload turns the data of an event into the chunk text. A JSON
// string payload yields its value, any other JSON value its text, and
// anything undecodable is used as is. Line endings are normalized and a
// leftover "data:" token is stripped from every line.
func NormalizePayload(data string) string {
	chunk := data

	var decoded any
	if err := json.Unmarshal([]byte(data), &decoded); err == nil {
		if s, ok := decoded.(string); ok {
			chunk = s
		} else {
			chunk = strings.TrimSpace(data)
		}
	}

	chunk = strings.ReplaceAll(chunk, "\r\n", "\n")
	return dataPrefix.ReplaceAllString(chunk, "")
}
