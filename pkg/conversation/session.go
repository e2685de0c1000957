package conversation

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/contactrelay/pkg/contact"
	"github.com/dmitrymomot/contactrelay/pkg/logger"
)

// DefaultDelay is the typing pause before a bot reply.
const DefaultDelay = 500 * time.Millisecond

// Submitter delivers a confirmed form. relayclient.Client implements it.
type Submitter interface {
	Send(ctx context.Context, s contact.Submission) (string, error)
}

// Session runs one conversation. It allows one outstanding operation at a
// time: while the bot is typing every input is refused with ErrBusy.
type Session struct {
	flow      *Flow
	submitter Submitter
	delay     time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	idle    *sync.Cond
	state   State
	closed  bool
	pending int

	ctx    context.Context
	cancel context.CancelFunc
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDelay sets the typing pause. Zero replies immediately.
func WithDelay(d time.Duration) SessionOption {
	return func(s *Session) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithTopic starts the session with topic already chosen.
func WithTopic(topic contact.Topic) SessionOption {
	return func(s *Session) {
		s.state = s.flow.Start(topic)
	}
}

// WithSessionLogger sets the logger for submission outcomes.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession starts a conversation driven by flow.
func NewSession(flow *Flow, submitter Submitter, opts ...SessionOption) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		flow:      flow,
		submitter: submitter,
		delay:     DefaultDelay,
		logger:    logger.Discard(),
		state:     flow.Start(""),
		ctx:       ctx,
		cancel:    cancel,
	}
	s.idle = sync.NewCond(&s.mu)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot safe to keep after further operations.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Messages = slices.Clone(st.Messages)
	return st
}

// Submit answers the current step. Validation failures are returned and
// recorded in State().LastError.
func (s *Session) Submit(input string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	next, err := s.flow.Accept(s.state, input)
	s.state = next
	if err != nil {
		return err
	}
	s.schedule(s.flow.Reply)
	return nil
}

// Confirm answers the summary. On yes the form is sent after the typing
// pause and the session ends in success or error.
func (s *Session) Confirm(yes bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if yes && s.submitter == nil {
		return ErrNilSubmitter
	}

	next, err := s.flow.Confirm(s.state, yes)
	if err != nil {
		return err
	}
	s.state = next

	if !yes {
		s.schedule(s.flow.Reply)
		return nil
	}

	s.scheduleSend(next.Form)
	return nil
}

// Reset starts over. It is refused while a reply is pending.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.state.Typing {
		return ErrBusy
	}
	s.state = s.flow.Reset()
	return nil
}

// Settle blocks until pending replies have landed. It may be called while
// other goroutines keep submitting; it returns once nothing is pending.
func (s *Session) Settle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wait()
}

// Close cancels pending replies and waits for them to stop. Further
// operations return ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cancel()
	s.wait()
}

// wait blocks until no reply is pending. Callers hold mu.
func (s *Session) wait() {
	for s.pending > 0 {
		s.idle.Wait()
	}
}

// release marks one reply as landed. Callers hold mu.
func (s *Session) release() {
	s.pending--
	if s.pending == 0 {
		s.idle.Broadcast()
	}
}

// schedule runs fn on the state after the typing pause. Callers hold mu.
func (s *Session) schedule(fn func(State) State) {
	s.pending++
	go func() {
		ok := s.pause()

		s.mu.Lock()
		defer s.mu.Unlock()
		defer s.release()
		if ok {
			s.state = fn(s.state)
		}
	}()
}

// scheduleSend delivers form after the typing pause. Callers hold mu.
func (s *Session) scheduleSend(form contact.Submission) {
	s.pending++
	go func() {
		var (
			id  string
			err error
		)
		ok := s.pause()
		if ok {
			id, err = s.submitter.Send(s.ctx, form)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		defer s.release()
		if !ok || s.ctx.Err() != nil {
			return
		}
		switch {
		case err != nil:
			s.logger.Warn("contact submission failed", logger.Topic(string(form.Topic)), logger.Error(err))
			s.state = s.flow.Failed(s.state, err)
		default:
			s.logger.Info("contact submission sent", logger.Topic(string(form.Topic)), logger.MessageID(id))
			s.state = s.flow.Delivered(s.state, id)
		}
	}()
}

// pause waits for the typing delay. It reports false once the session is
// closed.
func (s *Session) pause() bool {
	if s.delay <= 0 {
		return s.ctx.Err() == nil
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-s.ctx.Done():
		return false
	}
}
