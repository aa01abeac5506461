// Package chat owns the submit flow of the widget: one user message in, a
// loading placeholder, one upstream call, and the formatted reply or an
// apology out. It also holds the voice-capture session and the clipboard
// capability used by interactive front ends.
package chat

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"chatwidget/internal/completion"
	"chatwidget/internal/format"
	"chatwidget/internal/model"
)

const (
	// GreetingText opens a new conversation.
	GreetingText = "Hello! I'm your AI assistant. How can I help you today?"
	// FailureText replaces the placeholder when the upstream call fails.
	FailureText = "Sorry, I encountered an error. Please try again."
	// LoadingHTML is shown while a reply is pending.
	LoadingHTML = `<div class="loading-dots"><span></span><span></span><span></span></div>`
)

var (
	// ErrEmptyMessage is returned when the submitted text is blank.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrCompletionFailed wraps upstream failures; the returned message
	// carries the apology.
	ErrCompletionFailed = errors.New("completion failed")
)

// Options configures a Conversation.
type Options struct {
	Completer completion.Completer
	Formatter *format.Formatter
	// Serialize makes concurrent Submit calls take turns so replies land in
	// submission order.
	Serialize   bool
	HistorySize int
	Logger      *zap.Logger
	// OnUpdate is called after a message is added or resolved.
	OnUpdate func(model.Message)
	Now      func() time.Time
	NewID    func() string
}

// Conversation is one chat thread. It is safe for concurrent use.
type Conversation struct {
	id        string
	completer completion.Completer
	formatter *format.Formatter
	logger    *zap.Logger
	onUpdate  func(model.Message)
	now       func() time.Time
	newID     func() string
	turn      *semaphore.Weighted

	mu      sync.Mutex
	history *messageRing
}

// NewConversation creates a conversation with the given id.
func NewConversation(id string, opts Options) *Conversation {
	if opts.Formatter == nil {
		opts.Formatter = format.New(format.Options{})
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = 50
	}

	c := &Conversation{
		id:        id,
		completer: opts.Completer,
		formatter: opts.Formatter,
		logger:    opts.Logger.With(zap.String("conversation", id)),
		onUpdate:  opts.OnUpdate,
		now:       opts.Now,
		newID:     opts.NewID,
		history:   newMessageRing(opts.HistorySize),
	}
	if opts.Serialize {
		c.turn = semaphore.NewWeighted(1)
	}
	return c
}

// ID returns the conversation id.
func (c *Conversation) ID() string { return c.id }

// Messages returns the retained history, oldest first.
func (c *Conversation) Messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.snapshot()
}

// Greet appends the opening bot message.
func (c *Conversation) Greet() model.Message {
	return c.AddBotText(GreetingText)
}

// AddBotText formats text and appends it as a bot message.
func (c *Conversation) AddBotText(text string) model.Message {
	msg := &model.Message{
		ID:        c.newID(),
		Role:      model.RoleBot,
		Text:      text,
		Block:     c.formatter.Format(text),
		CreatedAt: c.now(),
	}
	return c.add(msg)
}

// Submit sends text upstream and returns the resolved bot message. On
// upstream failure the message holds the apology and the error wraps
// ErrCompletionFailed.
func (c *Conversation) Submit(ctx context.Context, text string) (model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Message{}, ErrEmptyMessage
	}

	c.add(&model.Message{
		ID:        c.newID(),
		Role:      model.RoleUser,
		Text:      text,
		Block:     model.Block{Kind: model.KindProse, HTML: html.EscapeString(text)},
		CreatedAt: c.now(),
	})
	placeholder := &model.Message{
		ID:        c.newID(),
		Role:      model.RoleBot,
		Block:     model.Block{Kind: model.KindProse, HTML: LoadingHTML},
		Pending:   true,
		CreatedAt: c.now(),
	}
	c.add(placeholder)

	if c.turn != nil {
		if err := c.turn.Acquire(ctx, 1); err != nil {
			return c.fail(placeholder, err), fmt.Errorf("%w: waiting for turn: %w", ErrCompletionFailed, err)
		}
		defer c.turn.Release(1)
	}

	if c.completer == nil {
		err := errors.New("no completer configured")
		return c.fail(placeholder, err), fmt.Errorf("%w: %w", ErrCompletionFailed, err)
	}

	started := c.now()
	reply, err := c.completer.Complete(ctx, text)
	if err != nil {
		return c.fail(placeholder, err), fmt.Errorf("%w: %w", ErrCompletionFailed, err)
	}

	block := c.formatter.Format(reply)
	c.logger.Debug("reply formatted",
		zap.String("kind", string(block.Kind)),
		zap.Duration("elapsed", c.now().Sub(started)))

	return c.resolve(placeholder, func(m *model.Message) {
		m.Text = reply
		m.Block = block
	}), nil
}

// LastCode returns the most recent code block in the history.
func (c *Conversation) LastCode() (model.CodeBlock, bool) {
	messages := c.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if code := messages[i].Block.Code; code != nil {
			return *code, true
		}
	}
	return model.CodeBlock{}, false
}

func (c *Conversation) fail(placeholder *model.Message, cause error) model.Message {
	c.logger.Warn("completion failed", zap.Error(cause))
	return c.resolve(placeholder, func(m *model.Message) {
		m.Text = FailureText
		m.Block = c.formatter.Format(FailureText)
		m.Failed = true
	})
}

func (c *Conversation) add(msg *model.Message) model.Message {
	c.mu.Lock()
	c.history.push(msg)
	snapshot := *msg
	c.mu.Unlock()

	c.notify(snapshot)
	return snapshot
}

func (c *Conversation) resolve(msg *model.Message, update func(*model.Message)) model.Message {
	c.mu.Lock()
	update(msg)
	msg.Pending = false
	snapshot := *msg
	c.mu.Unlock()

	c.notify(snapshot)
	return snapshot
}

func (c *Conversation) notify(msg model.Message) {
	if c.onUpdate != nil {
		c.onUpdate(msg)
	}
}
