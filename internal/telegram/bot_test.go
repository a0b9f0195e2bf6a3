package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeAPI struct {
	mu      sync.Mutex
	updates chan tgbotapi.Update
	sent    []tgbotapi.MessageConfig
	sendErr error
	stopped bool
}

func newFakeAPI() *fakeAPI { return &fakeAPI{updates: make(chan tgbotapi.Update, 8)} }

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel { return f.updates }

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeAPI) replies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.Text
	}
	return out
}

// echoHandler replies with a description of the call it received.
type echoHandler struct{}

func (echoHandler) Start() string  { return "start" }
func (echoHandler) Help() string   { return "help" }
func (echoHandler) Prices() string { return "prices" }
func (echoHandler) HandleText(_ context.Context, sender, text string) string {
	return "text:" + sender + ":" + text
}
func (echoHandler) HandleSummary(_ context.Context, sender, arg string, all bool) string {
	if all {
		return "report:" + arg
	}
	return "summary:" + sender + ":" + arg
}

func textUpdate(id int, from *tgbotapi.User, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: id,
		From:      from,
		Chat:      &tgbotapi.Chat{ID: 99},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		cmd, _, _ := strings.Cut(text, " ")
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return tgbotapi.Update{UpdateID: id, Message: msg}
}

var alice = &tgbotapi.User{ID: 1, UserName: "alice", FirstName: "Alice"}

func TestHandleUpdateRouting(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"2 שתל", "text:@alice:2 שתל"},
		{"/start", "start"},
		{"/help", "help"},
		{"/prices", "prices"},
		{"/summary weekly", "summary:@alice:weekly"},
		{"/summary", "summary:@alice:"},
		{"/report daily", "report:daily"},
		{"/unknown", "help"},
	}
	for i, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			api := newFakeAPI()
			b := New(api, echoHandler{})
			b.HandleUpdate(context.Background(), textUpdate(i+1, alice, tt.text))
			got := api.replies()
			if len(got) != 1 || got[0] != tt.want {
				t.Fatalf("replies = %q, want %q", got, tt.want)
			}
			if api.sent[0].ChatID != 99 || api.sent[0].ReplyToMessageID != i+1 {
				t.Fatalf("reply not addressed to the message: %+v", api.sent[0])
			}
		})
	}
}

func TestHandleUpdateIgnoresNonText(t *testing.T) {
	api := newFakeAPI()
	b := New(api, echoHandler{})
	b.HandleUpdate(context.Background(), tgbotapi.Update{UpdateID: 1})
	b.HandleUpdate(context.Background(), tgbotapi.Update{UpdateID: 2, Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}}})
	if n := len(api.replies()); n != 0 {
		t.Fatalf("expected no replies, got %d", n)
	}
}

func TestSendFailureIsSwallowed(t *testing.T) {
	api := newFakeAPI()
	api.sendErr = errors.New("network down")
	New(api, echoHandler{}).HandleUpdate(context.Background(), textUpdate(1, alice, "1 כתר"))
}

func TestSenderName(t *testing.T) {
	tests := []struct {
		user *tgbotapi.User
		want string
	}{
		{&tgbotapi.User{ID: 7, UserName: "bob", FirstName: "Bob"}, "@bob"},
		{&tgbotapi.User{ID: 7, FirstName: "Bob", LastName: "Cohen"}, "Bob Cohen"},
		{&tgbotapi.User{ID: 7, FirstName: "Bob"}, "Bob"},
		{&tgbotapi.User{ID: 7}, "7"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := SenderName(tt.user); got != tt.want {
			t.Errorf("SenderName(%+v) = %q, want %q", tt.user, got, tt.want)
		}
	}
}

func TestPerSenderRateLimit(t *testing.T) {
	api := newFakeAPI()
	b := New(api, echoHandler{}, WithRateLimit(2, time.Hour))
	defer b.limiter.Stop()
	bob := &tgbotapi.User{ID: 2, UserName: "bob"}

	for i := 1; i <= 3; i++ {
		b.HandleUpdate(context.Background(), textUpdate(i, alice, "1 כתר"))
	}
	b.HandleUpdate(context.Background(), textUpdate(4, bob, "1 כתר"))

	got := api.replies()
	if got[2] != msgRateLimited {
		t.Fatalf("third message should be limited, got %q", got[2])
	}
	if got[3] != "text:@bob:1 כתר" {
		t.Fatalf("other senders are unaffected, got %q", got[3])
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	api := newFakeAPI()
	b := New(api, echoHandler{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	api.updates <- textUpdate(1, alice, "/start")
	deadline := time.After(2 * time.Second)
	for len(api.replies()) == 0 {
		select {
		case <-deadline:
			t.Fatal("update was not handled")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	if !api.stopped {
		t.Fatal("polling was not stopped")
	}
}
