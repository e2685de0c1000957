package conversation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/contactrelay/pkg/contact"
	"github.com/dmitrymomot/contactrelay/pkg/conversation"
)

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) Send(ctx context.Context, s contact.Submission) (string, error) {
	args := m.Called(ctx, s)
	return args.String(0), args.Error(1)
}

func fillQuestion(t *testing.T, s *conversation.Session) {
	t.Helper()
	for _, in := range []string{"frage", "Wie läuft ein Coaching ab?", "Jo Müller", "jo@example.org"} {
		require.NoError(t, s.Submit(in))
		s.Settle()
	}
	require.Equal(t, conversation.StepConfirmation, s.State().Step)
}

func TestSession_Success(t *testing.T) {
	t.Parallel()

	sub := &mockSubmitter{}
	want := contact.Submission{
		Topic:   contact.TopicQuestion,
		Message: "Wie läuft ein Coaching ab?",
		Name:    "Jo Müller",
		Email:   "jo@example.org",
	}
	sub.On("Send", mock.Anything, want).Return("msg-1", nil).Once()

	s := conversation.NewSession(newFlow(t), sub, conversation.WithDelay(0))
	defer s.Close()

	fillQuestion(t, s)
	require.NoError(t, s.Confirm(true))
	s.Settle()

	st := s.State()
	assert.Equal(t, conversation.StepSuccess, st.Step)
	assert.Equal(t, "msg-1", st.MessageID)
	assert.False(t, st.Typing)
	sub.AssertExpectations(t)
}

func TestSession_Failure(t *testing.T) {
	t.Parallel()

	sub := &mockSubmitter{}
	sub.On("Send", mock.Anything, mock.Anything).Return("", errors.New("Verbindung fehlgeschlagen.")).Once()

	s := conversation.NewSession(newFlow(t), sub, conversation.WithDelay(0))
	defer s.Close()

	fillQuestion(t, s)
	require.NoError(t, s.Confirm(true))
	s.Settle()

	st := s.State()
	assert.Equal(t, conversation.StepError, st.Step)
	assert.Equal(t, "Verbindung fehlgeschlagen.", st.LastError)

	assert.ErrorIs(t, s.Submit("again"), conversation.ErrFinished)
	require.NoError(t, s.Reset())
	assert.Equal(t, conversation.StepTopicSelection, s.State().Step)
}

func TestSession_BusyWhileTyping(t *testing.T) {
	t.Parallel()

	s := conversation.NewSession(newFlow(t), &mockSubmitter{}, conversation.WithDelay(time.Hour))

	require.NoError(t, s.Submit("frage"))
	assert.True(t, s.State().Typing)
	assert.ErrorIs(t, s.Submit("webinar"), conversation.ErrBusy)
	assert.ErrorIs(t, s.Reset(), conversation.ErrBusy)

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not cancel the pending reply")
	}

	assert.Equal(t, conversation.StepTopicSelection, s.State().Step)
	assert.ErrorIs(t, s.Submit("frage"), conversation.ErrClosed)
}

func TestSession_DelayedReply(t *testing.T) {
	t.Parallel()

	s := conversation.NewSession(newFlow(t), &mockSubmitter{}, conversation.WithDelay(10*time.Millisecond))
	defer s.Close()

	require.NoError(t, s.Submit("webinar"))
	s.Settle()

	st := s.State()
	assert.False(t, st.Typing)
	assert.Equal(t, conversation.StepMessageInput, st.Step)
}

func TestSession_WithTopicAndDecline(t *testing.T) {
	t.Parallel()

	sub := &mockSubmitter{}
	s := conversation.NewSession(newFlow(t), sub,
		conversation.WithDelay(0),
		conversation.WithTopic(contact.TopicWebinar),
	)
	defer s.Close()

	assert.Equal(t, conversation.StepMessageInput, s.State().Step)
	for _, in := range []string{"Social-Media-Strategie", "im März", "Dienstag ab 18 Uhr", "Ana", "ana@example.com"} {
		require.NoError(t, s.Submit(in))
		s.Settle()
	}
	require.Equal(t, conversation.StepConfirmation, s.State().Step)

	require.NoError(t, s.Confirm(false))
	s.Settle()
	st := s.State()
	assert.Equal(t, conversation.StepTopicSelection, st.Step)
	assert.Equal(t, contact.Submission{}, st.Form)
	sub.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSession_ValidationErrorKeepsStep(t *testing.T) {
	t.Parallel()

	s := conversation.NewSession(newFlow(t), nil, conversation.WithDelay(0), conversation.WithTopic(contact.TopicQuestion))
	defer s.Close()

	before := s.State()
	require.Error(t, s.Submit("kurz"))
	after := s.State()
	assert.Equal(t, before.Step, after.Step)
	assert.Len(t, after.Messages, len(before.Messages))
	assert.NotEmpty(t, after.LastError)
}

func TestSession_ConfirmWithoutSubmitter(t *testing.T) {
	t.Parallel()

	s := conversation.NewSession(newFlow(t), nil, conversation.WithDelay(0))
	defer s.Close()

	fillQuestion(t, s)
	assert.ErrorIs(t, s.Confirm(true), conversation.ErrNilSubmitter)
}

func TestSession_ConcurrentSubmit(t *testing.T) {
	t.Parallel()

	s := conversation.NewSession(newFlow(t), nil, conversation.WithDelay(time.Hour))
	defer s.Close()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Submit("frage") == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
}

func TestSession_SettleWhileSubmitting(t *testing.T) {
	t.Parallel()

	s := conversation.NewSession(newFlow(t), nil, conversation.WithDelay(time.Millisecond))
	defer s.Close()

	inputs := []string{"frage", "Wie läuft ein Coaching ab?", "Jo Müller", "jo@example.org"}

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				s.Settle()
			}
		}()
	}

	for _, in := range inputs {
		err := s.Submit(in)
		for errors.Is(err, conversation.ErrBusy) {
			time.Sleep(time.Millisecond)
			err = s.Submit(in)
		}
		require.NoError(t, err)
	}
	wg.Wait()
	s.Settle()

	st := s.State()
	assert.False(t, st.Typing)
	assert.Equal(t, conversation.StepConfirmation, st.Step)
}

func TestSession_CloseWhilePending(t *testing.T) {
	t.Parallel()

	s := conversation.NewSession(newFlow(t), nil, conversation.WithDelay(time.Hour))
	require.NoError(t, s.Submit("frage"))

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not return while a reply was pending")
	}
	s.Settle()
	assert.ErrorIs(t, s.Submit("Hallo"), conversation.ErrClosed)
}
