// Package chat holds the state of one chat conversation: the message list,
// the in-flight turn and the last error.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sourcetalk/internal/logging"
	"sourcetalk/internal/relay"
)

// Texts shown in place of an assistant reply.
const (
	EmptyReplyText   = "Sorry, I received an empty response. Please try again."
	GenericErrorText = "Sorry, I encountered an error. Please try again."
	ConnectionText   = "Sorry, I'm having trouble connecting. Please check your connection and try again."
)

var (
	// ErrTurnInFlight is returned when a message is sent while the previous
	// one is still awaiting its reply.
	ErrTurnInFlight = errors.New("a message is already awaiting a reply")

	// ErrEmptyMessage is returned for a blank message.
	ErrEmptyMessage = errors.New("message is empty")
)

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`
	Loading   bool      `json:"isLoading,omitempty"`
}

// State is the turn state. Succeeded and Failed are settled: a new turn may
// begin from them as from Idle.
type State int

const (
	StateIdle State = iota
	StateSent
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSent:
		return "sent"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Sender relays one message. *relay.Client implements it.
type Sender interface {
	Send(ctx context.Context, message string) relay.Response
}

// Session is one conversation.
type Session struct {
	mu       sync.Mutex
	id       string
	sender   Sender
	messages []Message
	state    State
	err      string
	now      func() time.Time
}

// NewSession starts an empty conversation.
func NewSession(sender Sender) *Session {
	return &Session{
		id:     uuid.NewString(),
		sender: sender,
		now:    time.Now,
	}
}

// ID identifies the current conversation. Reset assigns a new one.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Messages returns a copy of the conversation.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// State returns the turn state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Typing reports whether a reply is awaited.
func (s *Session) Typing() bool {
	return s.State() == StateSent
}

// Err returns the error text of the last failed turn, or "".
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ClearError dismisses the last error.
func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

// Reset starts a new conversation. A turn still in flight completes
// silently against the discarded conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = uuid.NewString()
	s.messages = nil
	s.state = StateIdle
	s.err = ""
	logging.ChatDebug("new conversation %s", s.id)
}

// Turn is a sent message awaiting its reply.
type Turn struct {
	session     *Session
	sessionID   string
	assistantID string
	text        string
}

// Text returns the message sent.
func (t *Turn) Text() string { return t.text }

// Begin records text as a user message followed by a loading assistant
// placeholder and moves the session to Sent. The relay call itself happens
// in Complete so that callers can render the placeholder first.
func (s *Session) Begin(text string) (*Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSent {
		return nil, ErrTurnInFlight
	}

	now := s.now()
	s.messages = append(s.messages, Message{
		ID:        uuid.NewString(),
		Content:   text,
		Role:      RoleUser,
		Timestamp: now,
	})
	assistant := Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Timestamp: now,
		Loading:   true,
	}
	s.messages = append(s.messages, assistant)
	s.state = StateSent
	s.err = ""

	logging.Chat("turn started in %s (%d chars)", s.id, len(text))
	return &Turn{session: s, sessionID: s.id, assistantID: assistant.ID, text: text}, nil
}

// Complete relays the message and fills in the assistant placeholder.
func (t *Turn) Complete(ctx context.Context) relay.Response {
	resp := t.session.sender.Send(ctx, t.text)
	t.session.finish(t, resp, ctx.Err())
	return resp
}

func (s *Session) finish(t *Turn, resp relay.Response, ctxErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.id != t.sessionID {
		logging.ChatDebug("reply for discarded conversation %s ignored", t.sessionID)
		return
	}

	content, ok := replyContent(resp, ctxErr)
	for i := range s.messages {
		if s.messages[i].ID == t.assistantID {
			s.messages[i].Content = content
			s.messages[i].Loading = false
			break
		}
	}

	if ok {
		s.state = StateSucceeded
		return
	}
	s.state = StateFailed
	s.err = resp.Error
	if ctxErr != nil && s.err == "" {
		s.err = ctxErr.Error()
	}
	logging.ChatWarn("turn failed in %s: %s", s.id, s.err)
}

// replyContent picks the assistant text for a relay response.
func replyContent(resp relay.Response, ctxErr error) (string, bool) {
	if resp.Success && strings.TrimSpace(resp.Message) != "" {
		return resp.Message, true
	}
	if ctxErr != nil {
		return ConnectionText, false
	}
	if resp.Error != "" {
		return resp.Error, false
	}
	if strings.TrimSpace(resp.Message) == "" {
		return EmptyReplyText, false
	}
	return GenericErrorText, false
}

// Send runs a whole turn.
func (s *Session) Send(ctx context.Context, text string) (relay.Response, error) {
	turn, err := s.Begin(text)
	if err != nil {
		return relay.Response{}, err
	}
	return turn.Complete(ctx), nil
}
