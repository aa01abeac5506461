package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chatwidget/internal/chat"
	"chatwidget/internal/completion"
	"chatwidget/internal/config"
	"chatwidget/internal/model"
	"chatwidget/internal/view"
)

// voiceSubmitDelay gives the user a moment to see a spoken question before
// it is sent.
const voiceSubmitDelay = 500 * time.Millisecond

var (
	completerFactory                = newCompleter
	systemClipboard  chat.Clipboard = chat.SystemClipboard{}
)

func newAskCmd() *cobra.Command {
	var (
		formatFlag   string
		wrap         int
		forceColor   bool
		forceNoColor bool
		highlight    bool
	)

	cmd := &cobra.Command{
		Use:   "ask [prompt...]",
		Short: "Send one prompt upstream and print the formatted reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			if forceColor && forceNoColor {
				return errors.New("--color and --no-color cannot be used together")
			}
			prompt := strings.Join(args, " ")
			if strings.TrimSpace(prompt) == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				prompt = string(data)
			}

			cfg, err := currentConfig()
			if err != nil {
				return err
			}
			completer, err := completerFactory(cfg)
			if err != nil {
				return err
			}
			conv := chat.NewConversation("ask", chat.Options{
				Completer: completer,
				Formatter: newFormatter(cfg, highlight),
				Logger:    logger,
			})

			msg, submitErr := conv.Submit(cmd.Context(), prompt)
			if errors.Is(submitErr, chat.ErrEmptyMessage) {
				return errors.New("prompt is required")
			}
			out := cmd.OutOrStdout()
			if err := view.RenderBlock(view.Options{
				Format:       formatFlag,
				Wrap:         wrap,
				ForceColor:   forceColor,
				ForceNoColor: forceNoColor,
				Out:          out,
				OutFile:      outFile(out),
			}, msg.Text, msg.Block); err != nil {
				return err
			}
			return submitErr
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&formatFlag, "format", "text", "output format: html, text, or json")
	flags.IntVar(&wrap, "wrap", 0, "wrap width for text output (0 uses the terminal width)")
	flags.BoolVar(&forceColor, "color", false, "force colored output")
	flags.BoolVar(&forceNoColor, "no-color", false, "disable colored output")
	flags.BoolVar(&highlight, "highlight", false, "syntax-highlight code blocks with CSS classes")

	return cmd
}

func newChatCmd() *cobra.Command {
	var (
		wrap         int
		forceColor   bool
		forceNoColor bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat interactively in the terminal",
		Long: `Chat interactively in the terminal. Commands:
  /copy     copy the last code block to the clipboard
  /voice    start or stop voice input (when [voice] command is configured)
  /theme    toggle the saved theme
  /history  reprint the conversation
  /quit     leave`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if forceColor && forceNoColor {
				return errors.New("--color and --no-color cannot be used together")
			}
			cfg, err := currentConfig()
			if err != nil {
				return err
			}
			completer, err := completerFactory(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			s := newChatSession(cmd.Context(), cfg, completer, view.Options{
				Wrap:         wrap,
				ForceColor:   forceColor,
				ForceNoColor: forceNoColor,
				Out:          out,
				OutFile:      outFile(out),
			})
			defer s.close()
			return s.run(cmd.InOrStdin())
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&wrap, "wrap", 0, "bubble width (0 uses the terminal width)")
	flags.BoolVar(&forceColor, "color", false, "force colored output")
	flags.BoolVar(&forceNoColor, "no-color", false, "disable colored output")

	return cmd
}

// chatSession is the terminal counterpart of the browser widget.
type chatSession struct {
	ctx     context.Context
	cfg     *config.Config
	conv    *chat.Conversation
	capture *chat.CaptureSession
	opts    view.Options

	mu sync.Mutex // serializes terminal output
}

func newChatSession(ctx context.Context, cfg *config.Config, completer completion.Completer, opts view.Options) *chatSession {
	s := &chatSession{ctx: ctx, cfg: cfg, opts: opts}
	s.conv = chat.NewConversation("terminal", chat.Options{
		Completer:   completer,
		Formatter:   newFormatter(cfg, false),
		Serialize:   true,
		HistorySize: cfg.Server.HistorySize,
		Logger:      logger,
	})
	s.capture = chat.NewCaptureSession(chat.NewExecRecognizer(cfg.Voice.Command), chat.CaptureOptions{
		OnTranscript: func(text string) { s.notice("heard: " + text) },
		Submit: func(ctx context.Context, text string) {
			s.submit(ctx, text)
		},
		OnError: func(err error) {
			logger.Warn("voice input failed", zap.Error(err))
			s.notice(chat.VoiceFailureText)
		},
		AutoSubmitDelay: voiceSubmitDelay,
	})
	return s
}

func (s *chatSession) run(in io.Reader) error {
	s.render(s.conv.Greet())
	if s.capture.Available() {
		s.notice("voice input available: type /voice to start or stop")
	}

	lines := newLineReader(in, s.opts.Out, int(s.cfg.Server.MaxPromptBytes))
	defer lines.Close()
	for {
		raw, err := lines.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			quit, err := s.command(line)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
			continue
		}
		s.submit(s.ctx, line)
	}
}

func (s *chatSession) command(line string) (bool, error) {
	switch strings.ToLower(strings.Fields(line)[0]) {
	case "/quit", "/exit":
		return true, nil
	case "/copy":
		if _, err := chat.CopyLastCode(s.conv, systemClipboard); err != nil {
			s.notice("copy failed: " + err.Error())
			return false, nil
		}
		s.notice("copied")
	case "/voice":
		if !s.capture.Available() {
			s.notice("voice input is not configured")
			return false, nil
		}
		listening, err := s.capture.Toggle(s.ctx)
		if err != nil {
			logger.Warn("toggle voice input", zap.Error(err))
			s.notice(chat.VoiceFailureText)
			return false, nil
		}
		if listening {
			s.notice("listening...")
		} else {
			s.notice("voice input stopped")
		}
	case "/theme":
		theme, err := newThemeStore(s.cfg).Toggle()
		if err != nil {
			return false, err
		}
		s.notice("theme: " + string(theme))
	case "/history":
		s.mu.Lock()
		err := view.RenderConversation(s.opts, s.conv.Messages())
		s.mu.Unlock()
		return false, err
	default:
		s.notice("unknown command " + line)
	}
	return false, nil
}

func (s *chatSession) submit(ctx context.Context, text string) {
	s.render(model.Message{Role: model.RoleUser, Text: text, CreatedAt: time.Now()})
	msg, err := s.conv.Submit(ctx, text)
	if err != nil && !errors.Is(err, chat.ErrCompletionFailed) {
		return
	}
	s.render(msg)
}

func (s *chatSession) render(msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := view.RenderMessage(s.opts, msg); err != nil {
		logger.Warn("render message", zap.Error(err))
	}
}

func (s *chatSession) notice(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.opts.Out, "-- %s\n", text)
}

func (s *chatSession) close() {
	if err := s.capture.Close(); err != nil {
		logger.Warn("stop voice input", zap.Error(err))
	}
}

// lineReader yields one line of user input at a time; io.EOF ends the chat.
type lineReader interface {
	ReadLine() (string, error)
	Close()
}

// newLineReader uses liner for line editing and history when both ends are
// terminals, and a plain scanner otherwise.
func newLineReader(in io.Reader, out io.Writer, maxLine int) lineReader {
	inF, inOK := in.(*os.File)
	outF, outOK := out.(*os.File)
	if inOK && outOK && isatty.IsTerminal(inF.Fd()) && isatty.IsTerminal(outF.Fd()) {
		state := liner.NewLiner()
		state.SetCtrlCAborts(true)
		return &linerReader{state: state}
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &scannerReader{scanner: scanner}
}

type linerReader struct {
	state *liner.State
}

func (r *linerReader) ReadLine() (string, error) {
	line, err := r.state.Prompt("you> ")
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		r.state.AppendHistory(line)
	}
	return line, nil
}

func (r *linerReader) Close() { _ = r.state.Close() }

type scannerReader struct {
	scanner *bufio.Scanner
}

func (r *scannerReader) ReadLine() (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (r *scannerReader) Close() {}
