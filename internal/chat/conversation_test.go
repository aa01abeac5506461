package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"chatwidget/internal/completion"
	"chatwidget/internal/format"
	"chatwidget/internal/model"
)

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("m%d", n)
	}
}

func newTestConversation(c completion.Completer, serialize bool) *Conversation {
	return NewConversation("conv", Options{
		Completer: c,
		Formatter: format.New(format.Options{NewID: func() string { return "abc" }}),
		Serialize: serialize,
		NewID:     sequentialIDs(),
	})
}

func TestSubmitFormatsReply(t *testing.T) {
	reply := "Here is the code for it:\n```go\nfmt.Println(1)\n```"
	var gotPrompt string
	conv := newTestConversation(completion.CompleterFunc(func(_ context.Context, prompt string) (string, error) {
		gotPrompt = prompt
		return reply, nil
	}), false)

	msg, err := conv.Submit(context.Background(), "  show me code for printing  ")
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if gotPrompt != "show me code for printing" {
		t.Fatalf("prompt = %q", gotPrompt)
	}
	if msg.Role != model.RoleBot || msg.Pending || msg.Failed {
		t.Fatalf("unexpected message state: %+v", msg)
	}
	if msg.Block.Kind != model.KindCode || msg.Block.Code == nil || msg.Block.Code.Body != "fmt.Println(1)" {
		t.Fatalf("unexpected block: %+v", msg.Block)
	}
	if msg.Text != reply {
		t.Fatalf("text = %q", msg.Text)
	}

	history := conv.Messages()
	if len(history) != 2 {
		t.Fatalf("expected user and bot messages, got %d", len(history))
	}
	if history[0].Role != model.RoleUser || history[0].Text != "show me code for printing" {
		t.Fatalf("unexpected user message: %+v", history[0])
	}
	if history[1].ID != msg.ID || history[1].Pending {
		t.Fatalf("placeholder was not resolved in place: %+v", history[1])
	}
}

func TestSubmitEscapesUserText(t *testing.T) {
	conv := newTestConversation(completion.CompleterFunc(func(context.Context, string) (string, error) {
		return "ok", nil
	}), false)

	if _, err := conv.Submit(context.Background(), "<b>hi</b>"); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	user := conv.Messages()[0]
	if user.Block.HTML != "&lt;b&gt;hi&lt;/b&gt;" {
		t.Fatalf("user html = %q", user.Block.HTML)
	}
}

func TestSubmitEmpty(t *testing.T) {
	conv := newTestConversation(nil, false)
	if _, err := conv.Submit(context.Background(), " \n\t"); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if got := len(conv.Messages()); got != 0 {
		t.Fatalf("blank submit must not add messages, got %d", got)
	}
}

func TestSubmitFailureApologizes(t *testing.T) {
	upstream := errors.New("boom")
	conv := newTestConversation(completion.CompleterFunc(func(context.Context, string) (string, error) {
		return "", upstream
	}), false)

	msg, err := conv.Submit(context.Background(), "hello")
	if !errors.Is(err, ErrCompletionFailed) || !errors.Is(err, upstream) {
		t.Fatalf("expected wrapped failure, got %v", err)
	}
	if !msg.Failed || msg.Pending || msg.Text != FailureText {
		t.Fatalf("unexpected failure message: %+v", msg)
	}
	if msg.Block.HTML != "<p>"+FailureText+"</p>" {
		t.Fatalf("failure html = %q", msg.Block.HTML)
	}
	if got := len(conv.Messages()); got != 2 {
		t.Fatalf("expected one apology after the user message, got %d messages", got)
	}
}

func TestSubmitWithoutCompleter(t *testing.T) {
	conv := newTestConversation(nil, false)
	msg, err := conv.Submit(context.Background(), "hello")
	if !errors.Is(err, ErrCompletionFailed) {
		t.Fatalf("expected ErrCompletionFailed, got %v", err)
	}
	if !msg.Failed {
		t.Fatalf("expected failed message")
	}
}

func TestSubmitNotifiesPlaceholderThenReply(t *testing.T) {
	var updates []model.Message
	conv := NewConversation("conv", Options{
		Completer: completion.CompleterFunc(func(context.Context, string) (string, error) {
			return "plain answer", nil
		}),
		OnUpdate: func(m model.Message) { updates = append(updates, m) },
		NewID:    sequentialIDs(),
	})

	if _, err := conv.Submit(context.Background(), "hi"); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if len(updates) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(updates))
	}
	if updates[0].Role != model.RoleUser {
		t.Fatalf("first update should be the user message: %+v", updates[0])
	}
	if !updates[1].Pending || updates[1].Block.HTML != LoadingHTML {
		t.Fatalf("second update should be the loading placeholder: %+v", updates[1])
	}
	if updates[2].Pending || updates[2].ID != updates[1].ID {
		t.Fatalf("third update should resolve the placeholder: %+v", updates[2])
	}
}

func TestSerializedSubmitsTakeTurns(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan string, 2)
	conv := newTestConversation(completion.CompleterFunc(func(_ context.Context, prompt string) (string, error) {
		entered <- prompt
		if prompt == "first" {
			<-release
		}
		return "re: " + prompt, nil
	}), true)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = conv.Submit(context.Background(), "first")
	}()
	if got := <-entered; got != "first" {
		t.Fatalf("expected first call, got %q", got)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = conv.Submit(context.Background(), "second")
	}()

	select {
	case got := <-entered:
		t.Fatalf("second call %q started before the first finished", got)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	if got := <-entered; got != "second" {
		t.Fatalf("expected second call, got %q", got)
	}
	wg.Wait()
}

func TestSerializedSubmitHonoursCancel(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	conv := newTestConversation(completion.CompleterFunc(func(context.Context, string) (string, error) {
		close(started)
		<-release
		return "done", nil
	}), true)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = conv.Submit(context.Background(), "first")
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	msg, err := conv.Submit(ctx, "second")
	if !errors.Is(err, ErrCompletionFailed) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled wait, got %v", err)
	}
	if !msg.Failed {
		t.Fatalf("expected apology for cancelled wait")
	}

	close(release)
	<-done
}

func TestGreetAndLastCode(t *testing.T) {
	conv := newTestConversation(nil, false)
	greeting := conv.Greet()
	if greeting.Text != GreetingText || greeting.Block.Kind != model.KindProse {
		t.Fatalf("unexpected greeting: %+v", greeting)
	}
	if _, ok := conv.LastCode(); ok {
		t.Fatalf("expected no code yet")
	}

	conv.AddBotText("code for it\n```sh\necho one\n```")
	conv.AddBotText("code for it\n```sh\necho two\n```")
	conv.AddBotText("just prose")

	code, ok := conv.LastCode()
	if !ok || code.Body != "echo two" || code.Language != "sh" {
		t.Fatalf("LastCode = %+v, %v", code, ok)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	conv := NewConversation("conv", Options{HistorySize: 3, NewID: sequentialIDs()})
	for i := 0; i < 5; i++ {
		conv.AddBotText(fmt.Sprintf("line %d", i))
	}
	history := conv.Messages()
	if len(history) != 3 {
		t.Fatalf("expected 3 retained messages, got %d", len(history))
	}
	if !strings.HasSuffix(history[0].Text, "2") || !strings.HasSuffix(history[2].Text, "4") {
		t.Fatalf("unexpected retained window: %q .. %q", history[0].Text, history[2].Text)
	}
}
