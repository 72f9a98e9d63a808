package chat

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// FallbackReply is appended to the transcript when a request fails.
const FallbackReply = "Sorry, I had trouble getting a response."

// Completer is satisfied by *Client.
type Completer interface {
	Complete(ctx context.Context, transcript []Message) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, transcript []Message) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, transcript []Message) (string, error) {
	return f(ctx, transcript)
}

// Session is a running conversation. Concurrent sends are not coalesced.
type Session struct {
	mu         sync.Mutex
	completer  Completer
	transcript []Message
}

func NewSession(c Completer) *Session {
	return &Session{completer: c}
}

// Send appends text as a user message, asks for a reply and appends it. On
// failure the fallback reply is appended instead and the error returned.
// Blank text is ignored.
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, nil
	}

	s.mu.Lock()
	s.transcript = append(s.transcript, Message{Role: RoleUser, Content: text})
	snapshot := slices.Clone(s.transcript)
	s.mu.Unlock()

	reply, err := s.completer.Complete(ctx, snapshot)
	msg := Message{Role: RoleAssistant, Content: reply}
	if err != nil {
		msg.Content = FallbackReply
	}

	s.mu.Lock()
	s.transcript = append(s.transcript, msg)
	s.mu.Unlock()
	return msg, err
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.transcript)
}

// Reset clears the conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
}
