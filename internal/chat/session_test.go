package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"sourcetalk/internal/relay"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSender struct {
	mu   sync.Mutex
	resp relay.Response
	gate chan struct{}
	got  []string
}

func (f *fakeSender) Send(ctx context.Context, message string) relay.Response {
	f.mu.Lock()
	f.got = append(f.got, message)
	gate := f.gate
	resp := f.resp
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return relay.Response{Error: ctx.Err().Error()}
		}
	}
	return resp
}

func TestSession_SuccessfulTurn(t *testing.T) {
	sender := &fakeSender{resp: relay.Response{Message: "Harga semen Rp 72.500", Success: true, Shape: relay.ShapeArray}}
	s := NewSession(sender)

	resp, err := s.Send(context.Background(), "  harga semen?  ")
	require.NoError(t, err)
	assert.True(t, resp.Success)

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "harga semen?", msgs[0].Content)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, "Harga semen Rp 72.500", msgs[1].Content)
	assert.False(t, msgs[1].Loading)
	assert.NotEqual(t, msgs[0].ID, msgs[1].ID)
	assert.Equal(t, StateSucceeded, s.State())
	assert.Empty(t, s.Err())
	assert.Equal(t, []string{"harga semen?"}, sender.got)
}

func TestSession_PlaceholderWhileInFlight(t *testing.T) {
	sender := &fakeSender{resp: relay.Response{Message: "ok", Success: true}, gate: make(chan struct{})}
	s := NewSession(sender)

	turn, err := s.Begin("hello")
	require.NoError(t, err)
	assert.Equal(t, StateSent, s.State())
	assert.True(t, s.Typing())

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.True(t, msgs[1].Loading)
	assert.Empty(t, msgs[1].Content)

	_, err = s.Begin("second")
	assert.ErrorIs(t, err, ErrTurnInFlight)
	_, err = s.Send(context.Background(), "third")
	assert.ErrorIs(t, err, ErrTurnInFlight)
	assert.Len(t, s.Messages(), 2)

	done := make(chan relay.Response)
	go func() { done <- turn.Complete(context.Background()) }()
	close(sender.gate)
	<-done

	assert.Equal(t, StateSucceeded, s.State())
	assert.Equal(t, "ok", s.Messages()[1].Content)

	_, err = s.Send(context.Background(), "next")
	assert.NoError(t, err, "a settled session accepts a new turn")
	assert.Len(t, s.Messages(), 4)
}

func TestSession_FailureTexts(t *testing.T) {
	tests := []struct {
		name    string
		resp    relay.Response
		content string
		err     string
	}{
		{
			name:    "server error",
			resp:    relay.Response{Error: "HTTP error! status: 500 Internal Server Error"},
			content: "HTTP error! status: 500 Internal Server Error",
			err:     "HTTP error! status: 500 Internal Server Error",
		},
		{
			name:    "empty success",
			resp:    relay.Response{Message: "   ", Success: true},
			content: EmptyReplyText,
		},
		{
			name:    "failure without detail",
			resp:    relay.Response{Message: "partial"},
			content: GenericErrorText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(&fakeSender{resp: tt.resp})
			_, err := s.Send(context.Background(), "hi")
			require.NoError(t, err)

			msgs := s.Messages()
			require.Len(t, msgs, 2)
			assert.Equal(t, tt.content, msgs[1].Content)
			assert.False(t, msgs[1].Loading)
			assert.Equal(t, StateFailed, s.State())
			assert.Equal(t, tt.err, s.Err())
		})
	}
}

func TestSession_CancelledTurnShowsConnectionText(t *testing.T) {
	sender := &fakeSender{gate: make(chan struct{})}
	s := NewSession(sender)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Send(ctx, "hi")
	require.NoError(t, err)

	assert.Equal(t, ConnectionText, s.Messages()[1].Content)
	assert.Equal(t, StateFailed, s.State())
	assert.Equal(t, context.DeadlineExceeded.Error(), s.Err())

	s.ClearError()
	assert.Empty(t, s.Err())
}

func TestSession_EmptyMessage(t *testing.T) {
	s := NewSession(&fakeSender{})
	_, err := s.Begin("   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, s.Messages())
	assert.Equal(t, StateIdle, s.State())
}

func TestSession_ResetDropsLateReply(t *testing.T) {
	sender := &fakeSender{resp: relay.Response{Message: "late", Success: true}, gate: make(chan struct{})}
	s := NewSession(sender)
	oldID := s.ID()

	turn, err := s.Begin("hello")
	require.NoError(t, err)

	s.Reset()
	assert.NotEqual(t, oldID, s.ID())
	assert.Empty(t, s.Messages())
	assert.Equal(t, StateIdle, s.State())

	done := make(chan struct{})
	go func() {
		turn.Complete(context.Background())
		close(done)
	}()
	close(sender.gate)
	<-done

	assert.Empty(t, s.Messages(), "late reply must not reach the new conversation")
	assert.Equal(t, StateIdle, s.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "sent", StateSent.String())
	assert.Equal(t, "succeeded", StateSucceeded.String())
	assert.Equal(t, "failed", StateFailed.String())
}
