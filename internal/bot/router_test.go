package bot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	domerrors "github.com/sourcehf/convo/internal/errors"
	"github.com/sourcehf/convo/internal/logger"
	"github.com/sourcehf/convo/internal/userstate"
)

// recordingSender captures outbound messages.
type recordingSender struct {
	mu       sync.Mutex
	messages []string
}

func (s *recordingSender) Send(message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
	return nil
}

func (s *recordingSender) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

// scriptedHandler records invocations and runs an optional body.
type scriptedHandler struct {
	name string
	body func(ctx context.Context, inv *Invocation) error

	mu    sync.Mutex
	calls []Invocation
}

func (h *scriptedHandler) Name() string { return h.name }

func (h *scriptedHandler) Handle(ctx context.Context, inv *Invocation) error {
	h.mu.Lock()
	h.calls = append(h.calls, *inv)
	h.mu.Unlock()
	if h.body != nil {
		return h.body(ctx, inv)
	}
	return nil
}

func (h *scriptedHandler) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.calls)
}

func newTestRouter(t *testing.T) (*Router, *recordingSender, *userstate.Manager) {
	t.Helper()

	state := userstate.NewManager(userstate.Config{
		MaxRequests: 5,
		Window:      time.Minute,
		Cooldowns:   map[userstate.ActionType]time.Duration{},
	})
	t.Cleanup(state.Stop)

	sender := &recordingSender{}
	log := logger.NewWithWriter("error", io.Discard)
	return NewRouter(state, sender, log, nil, "/"), sender, state
}

func message(userID, text string) Message {
	return Message{
		UserID: userID,
		Text:   text,
		Users:  map[string]UserProfile{userID: {Username: "tester"}},
	}
}

func TestDispatchRoutesToHandler(t *testing.T) {
	t.Parallel()
	r, _, _ := newTestRouter(t)

	h := &scriptedHandler{name: "ai"}
	r.Register(h)

	r.Dispatch(message("u1", "/ai what is the capital of France?"))

	if h.callCount() != 1 {
		t.Fatalf("handler called %d times, want 1", h.callCount())
	}
	inv := h.calls[0]
	if inv.UserID != "u1" || inv.DisplayName != "tester" {
		t.Errorf("invocation identity = %+v", inv)
	}
	if inv.Args != "what is the capital of France?" {
		t.Errorf("Args = %q", inv.Args)
	}
}

func TestDispatchIgnoresNonCommands(t *testing.T) {
	t.Parallel()
	r, sender, _ := newTestRouter(t)

	h := &scriptedHandler{name: "ai"}
	r.Register(h)

	r.Dispatch(message("u1", "hello everyone"))
	r.Dispatch(message("u1", "ai without prefix"))

	if h.callCount() != 0 {
		t.Error("plain chatter must not reach handlers")
	}
	if len(sender.all()) != 0 {
		t.Error("plain chatter must not produce replies")
	}
}

func TestDispatchUnknownCommandIsSilent(t *testing.T) {
	t.Parallel()
	r, sender, _ := newTestRouter(t)

	r.Dispatch(message("u1", "/dance"))

	if len(sender.all()) != 0 {
		t.Error("unknown commands must be dropped silently")
	}
}

func TestDispatchRateLimitIsSilent(t *testing.T) {
	t.Parallel()
	r, sender, _ := newTestRouter(t)

	h := &scriptedHandler{name: "commands"}
	r.Register(h)

	for i := 0; i < 8; i++ {
		r.Dispatch(message("u1", "/commands"))
	}

	if got := h.callCount(); got != 5 {
		t.Errorf("handler called %d times, want 5 (the window limit)", got)
	}
	if len(sender.all()) != 0 {
		t.Error("rate-limited attempts must not produce replies")
	}
}

func TestDispatchUnknownCommandStillCountsAgainstLimit(t *testing.T) {
	t.Parallel()
	r, _, _ := newTestRouter(t)

	h := &scriptedHandler{name: "ai"}
	r.Register(h)

	for i := 0; i < 5; i++ {
		r.Dispatch(message("u1", "/nope"))
	}
	r.Dispatch(message("u1", "/ai hello"))

	if h.callCount() != 0 {
		t.Error("rejected attempts count toward the window, so the 6th call is limited")
	}
}

func TestDispatchDropsConcurrentDuplicate(t *testing.T) {
	t.Parallel()
	r, _, _ := newTestRouter(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	h := &scriptedHandler{
		name: "sports",
		body: func(context.Context, *Invocation) error {
			close(entered)
			<-release
			return nil
		},
	}
	r.Register(h)

	done := make(chan struct{})
	go func() {
		r.Dispatch(message("u1", "/sports nfl"))
		close(done)
	}()
	<-entered

	// Same user, same command, while the first is still in flight.
	r.Dispatch(message("u1", "/sports nfl"))
	if h.callCount() != 1 {
		t.Error("duplicate invocation should be dropped, not queued")
	}

	close(release)
	<-done

	// The lock must be gone once the first invocation finishes.
	h.body = nil
	r.Dispatch(message("u1", "/sports nfl"))
	if h.callCount() != 2 {
		t.Error("lock should be released after the invocation completes")
	}
}

func TestDispatchHandlerErrorSendsGenericReply(t *testing.T) {
	t.Parallel()
	r, sender, _ := newTestRouter(t)

	h := &scriptedHandler{
		name: "ai",
		body: func(context.Context, *Invocation) error { return errors.New("upstream down") },
	}
	r.Register(h)

	r.Dispatch(message("u1", "/ai hi"))

	msgs := sender.all()
	if len(msgs) != 1 || msgs[0] != genericErrorMessage {
		t.Errorf("messages = %v, want the single generic error reply", msgs)
	}
}

func TestDispatchRecoversFromPanic(t *testing.T) {
	t.Parallel()
	r, sender, _ := newTestRouter(t)

	calls := 0
	h := &scriptedHandler{
		name: "yt",
		body: func(context.Context, *Invocation) error {
			calls++
			if calls == 1 {
				panic("nil video id")
			}
			return nil
		},
	}
	r.Register(h)

	r.Dispatch(message("u1", "/yt cats"))

	msgs := sender.all()
	if len(msgs) != 1 || msgs[0] != genericErrorMessage {
		t.Fatalf("messages = %v, want the generic error reply", msgs)
	}

	// The panic must not leak the lock.
	r.Dispatch(message("u1", "/yt cats"))
	if h.callCount() != 2 {
		t.Error("command should work again after a panic")
	}
}

func TestDisplayNameFallback(t *testing.T) {
	t.Parallel()

	msg := Message{UserID: "u9", Text: "/ai hi", Users: map[string]UserProfile{}}
	if got := msg.DisplayName(); got != "Unknown" {
		t.Errorf("DisplayName = %q, want Unknown", got)
	}
}

func TestProfileLink(t *testing.T) {
	t.Parallel()

	got := ProfileLink("12345")
	want := "(https://hackforums.net/member.php?action=profile&uid=12345)"
	if got != want {
		t.Errorf("ProfileLink = %q, want %q", got, want)
	}
}

func TestDispatchLogsDropReasons(t *testing.T) {
	t.Parallel()

	state := userstate.NewManager(userstate.Config{
		MaxRequests: 3,
		Window:      time.Minute,
		Cooldowns:   map[userstate.ActionType]time.Duration{},
	})
	t.Cleanup(state.Stop)

	var buf bytes.Buffer
	log := logger.NewWithWriter("debug", &buf)
	r := NewRouter(state, &recordingSender{}, log, nil, "/")
	r.Register(&scriptedHandler{name: "ai"})

	// Hold the lock so the first /ai contends, then burn the remaining
	// window budget on unknown commands until the limit trips.
	state.TryLock("u1", "ai")
	r.Dispatch(message("u1", "/ai hi"))
	r.Dispatch(message("u1", "/nope"))
	r.Dispatch(message("u1", "/nope"))
	r.Dispatch(message("u1", "/ai again"))

	out := buf.String()
	for _, want := range []string{
		domerrors.ErrLocked.Error(),
		domerrors.ErrUnknownCommand.Error(),
		domerrors.ErrRateLimited.Error(),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("drop log should mention %q, got %s", want, out)
		}
	}
}
