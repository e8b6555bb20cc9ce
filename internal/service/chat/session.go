package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zhouzirui/throne-room/backend/internal/model/chat"
	"github.com/zhouzirui/throne-room/backend/internal/model/persona"
)

// FallbackReply is appended in place of a reply whenever a round fails.
const FallbackReply = "I apologize, but I encountered an error. Please try again."

// ErrCompletionFailed is the single failure kind of a round. It only ever
// reaches the logs; the transcript gets FallbackReply instead.
var ErrCompletionFailed = errors.New("completion request failed")

var errNoCompleter = errors.New("no completion provider configured")

// Completer is the external chat-completion service as seen by a session.
type Completer interface {
	Complete(ctx context.Context, messages []chat.Message, params chat.Sampling) (string, error)
}

// Options tunes every session created with them.
type Options struct {
	Sampling       chat.Sampling
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// Session is the chat controller behind one persona screen. It owns the
// transcript, the pending-input buffer and the in-flight flag. At most one
// round is in flight; submissions made meanwhile are dropped.
type Session struct {
	id        string
	persona   persona.Persona
	prompt    string
	completer Completer
	sampling  chat.Sampling
	timeout   time.Duration
	log       *zap.Logger

	mu           sync.Mutex
	transcript   []chat.Message
	pendingInput string
	inFlight     bool
	closed       bool
	subscribers  map[int]chan chat.Snapshot
	nextSub      int
}

// NewSession returns an IDLE session with an empty transcript. A nil
// completer makes every round fail into the fallback reply.
func NewSession(id string, p persona.Persona, completer Completer, opts Options) *Session {
	sampling := opts.Sampling
	if sampling == (chat.Sampling{}) {
		sampling = chat.DefaultSampling()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Session{
		id:          id,
		persona:     p,
		prompt:      p.Prompt(),
		completer:   completer,
		sampling:    sampling,
		timeout:     opts.RequestTimeout,
		log:         log.With(zap.String("session", id), zap.String("persona", p.ID)),
		transcript:  make([]chat.Message, 0, 16),
		subscribers: make(map[int]chan chat.Snapshot),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Persona returns the descriptor the session was built with.
func (s *Session) Persona() persona.Persona { return s.persona }

// Submit runs one full round for text and reports whether it was accepted.
// Blank text or a round already in flight make it a no-op returning false.
func (s *Session) Submit(ctx context.Context, text string) bool {
	payload, ok := s.begin(text)
	if !ok {
		return false
	}
	s.run(ctx, payload)
	return true
}

// Dispatch performs the synchronous half of a submission (guard, local echo,
// in-flight flag) and resolves the round on its own goroutine. The returned
// channel is closed once the assistant message has been appended.
func (s *Session) Dispatch(ctx context.Context, text string) (<-chan struct{}, bool) {
	payload, ok := s.begin(text)
	if !ok {
		return nil, false
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.run(ctx, payload)
	}()
	return done, true
}

// begin applies the IDLE -> AWAITING_RESPONSE transition and returns the
// payload for the remote call: the system prompt followed by the full
// transcript, which already ends with the new user message.
func (s *Session) begin(text string) ([]chat.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.inFlight || chat.IsBlank(text) {
		return nil, false
	}

	s.transcript = append(s.transcript, chat.UserMessage(text))
	s.pendingInput = ""
	s.inFlight = true

	payload := make([]chat.Message, 0, len(s.transcript)+1)
	payload = append(payload, chat.SystemMessage(s.prompt))
	payload = append(payload, s.transcript...)

	s.publishLocked()
	return payload, true
}

// run performs the remote call and always hands exactly one reply to finish,
// even if the completer panics.
func (s *Session) run(ctx context.Context, payload []chat.Message) {
	reply := FallbackReply
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("completion panicked", zap.Any("panic", r))
			reply = FallbackReply
		}
		s.finish(reply)
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	content, err := s.complete(ctx, payload)
	if err != nil {
		s.log.Warn("completion failed, using fallback reply",
			zap.Error(fmt.Errorf("%w: %w", ErrCompletionFailed, err)),
			zap.Int("payload_messages", len(payload)),
			zap.Duration("elapsed", time.Since(started)),
		)
		return
	}

	reply = content
	s.log.Info("completion succeeded",
		zap.Int("payload_messages", len(payload)),
		zap.Int("reply_length", len(content)),
		zap.Duration("elapsed", time.Since(started)),
	)
}

func (s *Session) complete(ctx context.Context, payload []chat.Message) (string, error) {
	if s.completer == nil {
		return "", errNoCompleter
	}
	content, err := s.completer.Complete(ctx, payload, s.sampling)
	if err != nil {
		return "", err
	}
	if chat.IsBlank(content) {
		return "", errors.New("empty reply content")
	}
	return content, nil
}

// finish applies AWAITING_RESPONSE -> IDLE with exactly one assistant message.
func (s *Session) finish(reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcript = append(s.transcript, chat.AssistantMessage(reply))
	s.inFlight = false
	s.publishLocked()
}

// Transcript returns a copy of the messages exchanged so far.
func (s *Session) Transcript() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]chat.Message(nil), s.transcript...)
}

// IsAwaiting reports whether a round is in flight.
func (s *Session) IsAwaiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// State returns the current state-machine position.
func (s *Session) State() chat.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// PendingInput returns the unsent input buffer.
func (s *Session) PendingInput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingInput
}

// SetPendingInput replaces the unsent input buffer.
func (s *Session) SetPendingInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingInput == text {
		return
	}
	s.pendingInput = text
	s.publishLocked()
}

// Snapshot returns a consistent read-only view of the session.
func (s *Session) Snapshot() chat.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel carrying the latest snapshot after every state
// change, starting with the current one. A slow reader skips intermediate
// snapshots but always sees the most recent. cancel releases the channel; it
// is also closed when the session is closed.
func (s *Session) Subscribe() (<-chan chat.Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan chat.Snapshot, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch
	ch <- s.snapshotLocked()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subscribers[id]; ok {
				delete(s.subscribers, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Close discards the session. Subscribers are released and further
// submissions are rejected; a round already in flight still resolves but is
// no longer observed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}

func (s *Session) stateLocked() chat.State {
	if s.inFlight {
		return chat.StateAwaitingResponse
	}
	return chat.StateIdle
}

func (s *Session) snapshotLocked() chat.Snapshot {
	return chat.Snapshot{
		SessionID:    s.id,
		PersonaID:    s.persona.ID,
		State:        s.stateLocked(),
		Awaiting:     s.inFlight,
		PendingInput: s.pendingInput,
		Transcript:   append([]chat.Message{}, s.transcript...),
	}
}

// publishLocked replaces whatever snapshot a subscriber has not read yet.
// Only publishers send, and they hold s.mu, so the drain-then-send never blocks.
func (s *Session) publishLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subscribers {
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
