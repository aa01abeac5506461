// Package view renders formatted replies and conversations for a terminal.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"chatwidget/internal/format"
	"chatwidget/internal/model"
)

// Options defines how a block or a conversation is written.
type Options struct {
	// Format is html, text or json for blocks; chat is implied for
	// conversations.
	Format       string
	Wrap         int
	ForceColor   bool
	ForceNoColor bool
	// Pager pipes chat transcripts through $PAGER when OutFile is a TTY.
	Pager   bool
	Out     io.Writer
	OutFile *os.File
}

// RenderBlock writes one formatted reply.
func RenderBlock(opts Options, raw string, block model.Block) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	mode := strings.ToLower(opts.Format)
	if mode == "" {
		mode = "html"
	}

	switch mode {
	case "html":
		_, err := fmt.Fprintln(opts.Out, block.HTML)
		return err

	case "text":
		useColor := resolveColorChoice(opts)
		header := fmt.Sprintf("[%s]", block.Kind)
		if useColor {
			header = colorize(true, kindColor(block.Kind), header)
		}
		if _, err := fmt.Fprintln(opts.Out, header); err != nil {
			return err
		}
		return writeLines(opts.Out, format.RenderTextLines(raw, block, determineWidth(opts.OutFile, opts.Wrap)))

	case "json":
		enc := json.NewEncoder(opts.Out)
		enc.SetEscapeHTML(false)
		return enc.Encode(block)

	default:
		return fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

// RenderConversation writes messages as chat bubbles.
func RenderConversation(opts Options, messages []model.Message) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if len(messages) == 0 {
		return nil
	}

	colorEnabled := resolveColorChoice(opts)
	width := determineWidth(opts.OutFile, opts.Wrap)
	lines := renderChatTranscript(messages, width, colorEnabled)
	if len(lines) == 0 {
		return nil
	}
	if opts.Pager && opts.OutFile != nil && isatty.IsTerminal(opts.OutFile.Fd()) {
		return pipeThroughPager(lines, colorEnabled)
	}
	return writeLines(opts.Out, lines)
}

// RenderMessage writes a single chat bubble.
func RenderMessage(opts Options, msg model.Message) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	width := determineWidth(opts.OutFile, opts.Wrap)
	return writeLines(opts.Out, renderChatBubble(msg, width, 2, resolveColorChoice(opts)))
}

// Width returns the wrap width for out: the explicit wrap, the terminal
// size, $COLUMNS, then 80.
func Width(out *os.File, wrap int) int {
	return determineWidth(out, wrap)
}

func determineWidth(out *os.File, wrap int) int {
	if wrap > 0 {
		return wrap
	}
	if out != nil {
		if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if colsStr := os.Getenv("COLUMNS"); colsStr != "" {
		if v, err := strconv.Atoi(colsStr); err == nil && v > 0 {
			return v
		}
	}
	return 80
}

func pipeThroughPager(lines []string, colorEnabled bool) error {
	text := strings.Join(lines, "\n")
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	pagerCmd := os.Getenv("PAGER")
	var cmd *exec.Cmd
	if pagerCmd == "" {
		args := []string{"less"}
		if colorEnabled {
			args = append(args, "-R")
		}
		cmd = exec.Command(args[0], args[1:]...) // #nosec G204
	} else {
		cmd = exec.Command("sh", "-c", pagerCmd) // #nosec G204
	}

	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create pager pipe: %w", err)
	}
	go func() {
		defer stdin.Close()
		io.WriteString(stdin, text) //nolint:errcheck
	}()

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run pager: %w", err)
	}
	return nil
}

func writeLines(out io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

const (
	ansiReset     = "\x1b[0m"
	ansiTimestamp = "\x1b[38;5;245m"
	ansiSeparator = "\x1b[38;5;240m"
	ansiBot       = "\x1b[38;5;44m"
	ansiUser      = "\x1b[38;5;220m"
	ansiCode      = "\x1b[38;5;207m"
	ansiFailed    = "\x1b[38;5;203m"
)

func colorize(enabled bool, code string, text string) string {
	if !enabled {
		return text
	}
	return code + text + ansiReset
}

func roleColor(msg model.Message) string {
	if msg.Failed {
		return ansiFailed
	}
	switch msg.Role {
	case model.RoleBot:
		return ansiBot
	case model.RoleUser:
		return ansiUser
	default:
		return ansiSeparator
	}
}

func kindColor(kind model.Kind) string {
	switch kind {
	case model.KindCode:
		return ansiCode
	case model.KindTable:
		return ansiBot
	default:
		return ansiTimestamp
	}
}

func resolveColorChoice(opts Options) bool {
	if opts.ForceColor {
		return true
	}
	if opts.ForceNoColor {
		return false
	}
	return shouldUseColorAuto(opts.Out)
}

func shouldUseColorAuto(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
