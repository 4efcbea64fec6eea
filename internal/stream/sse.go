package stream

import (
	"bufio"
	"io"
	"strings"
)

// Message is one dispatched server-sent event.
type Message struct {
	Event string // "event:" field, empty for the default "message" type
	ID    string // "id:" field
	Data  string // "data:" lines joined with "\n"
}

// Reader splits a text/event-stream body into messages.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps an event-stream body.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next blocks until a complete message has been read.
// Messages without data are skipped. It returns io.EOF when the stream ends
// cleanly between messages and io.ErrUnexpectedEOF when it ends mid-message.
func (r *Reader) Next() (Message, error) {
	var (
		msg       Message
		dataLines []string
		pending   bool
	)

	for {
		line, err := r.r.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF && pending {
				return Message{}, io.ErrUnexpectedEOF
			}
			return Message{}, err
		}
		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			// Blank line dispatches the event
			if len(dataLines) > 0 {
				msg.Data = strings.Join(dataLines, "\n")
				return msg, nil
			}
			msg = Message{}
			pending = false
			continue
		}

		if strings.HasPrefix(line, ":") {
			// Comment / keep-alive
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		pending = true

		switch field {
		case "event":
			msg.Event = value
		case "data":
			dataLines = append(dataLines, value)
		case "id":
			msg.ID = value
		}

		if err != nil {
			// Final line without a trailing newline
			if err == io.EOF {
				return Message{}, io.ErrUnexpectedEOF
			}
			return Message{}, err
		}
	}
}
