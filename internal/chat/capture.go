package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// VoiceFailureText is shown when a capture session reports an error.
const VoiceFailureText = "Voice input failed. Please try again."

// RecognizerHandlers receive the events of one capture session.
type RecognizerHandlers struct {
	// OnResult receives each final transcript.
	OnResult func(transcript string)
	// OnError receives a capture failure.
	OnError func(err error)
	// OnEnd is called once when the capture stops for any reason.
	OnEnd func()
}

// Recognizer is a speech-to-text capability with start/stop control.
type Recognizer interface {
	Start(ctx context.Context, h RecognizerHandlers) error
	Stop() error
}

// CaptureOptions configures a CaptureSession.
type CaptureOptions struct {
	// OnTranscript places a transcript into the input field.
	OnTranscript func(transcript string)
	// Submit sends a transcript as a message.
	Submit func(ctx context.Context, text string)
	// OnError reports a failed capture to the user.
	OnError func(err error)
	// AutoSubmitDelay postpones the automatic submit of a question.
	AutoSubmitDelay time.Duration
}

// CaptureSession owns the single voice capture of an input surface. Only one
// capture is active at a time; Toggle starts or stops it.
type CaptureSession struct {
	rec  Recognizer
	opts CaptureOptions

	mu        sync.Mutex
	listening bool
	session   uint64
	timers    []*time.Timer
}

// NewCaptureSession wraps rec. A nil rec yields a session that reports
// itself unavailable.
func NewCaptureSession(rec Recognizer, opts CaptureOptions) *CaptureSession {
	return &CaptureSession{rec: rec, opts: opts}
}

// Available reports whether voice input can be offered.
func (s *CaptureSession) Available() bool {
	return s != nil && s.rec != nil
}

// Listening reports whether a capture is active.
func (s *CaptureSession) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}

// Toggle starts a capture when idle and stops it when listening. It returns
// the new listening state.
func (s *CaptureSession) Toggle(ctx context.Context) (bool, error) {
	if !s.Available() {
		return false, fmt.Errorf("voice input: %w", ErrUnavailable)
	}

	s.mu.Lock()
	if s.listening {
		s.mu.Unlock()
		if err := s.rec.Stop(); err != nil {
			return true, fmt.Errorf("stop capture: %w", err)
		}
		s.end(0)
		return false, nil
	}
	s.listening = true
	s.session++
	id := s.session
	s.mu.Unlock()

	err := s.rec.Start(ctx, RecognizerHandlers{
		OnResult: func(transcript string) { s.handleResult(ctx, transcript) },
		OnError:  s.handleError,
		OnEnd:    func() { s.end(id) },
	})
	if err != nil {
		s.end(id)
		return false, fmt.Errorf("start capture: %w", err)
	}
	return true, nil
}

// Close stops any active capture and cancels pending automatic submits.
func (s *CaptureSession) Close() error {
	if !s.Available() {
		return nil
	}
	s.mu.Lock()
	listening := s.listening
	timers := s.timers
	s.timers = nil
	s.mu.Unlock()

	for _, t := range timers {
		t.Stop()
	}
	if !listening {
		return nil
	}
	err := s.rec.Stop()
	s.end(0)
	return err
}

// end clears the listening flag. id 0 ends whichever session is active.
func (s *CaptureSession) end(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == 0 || id == s.session {
		s.listening = false
	}
}

func (s *CaptureSession) handleResult(ctx context.Context, transcript string) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return
	}
	if s.opts.OnTranscript != nil {
		s.opts.OnTranscript(transcript)
	}
	if !strings.HasSuffix(transcript, "?") || s.opts.Submit == nil {
		return
	}

	if s.opts.AutoSubmitDelay <= 0 {
		s.opts.Submit(ctx, transcript)
		return
	}
	s.mu.Lock()
	s.timers = append(s.timers, time.AfterFunc(s.opts.AutoSubmitDelay, func() {
		s.opts.Submit(ctx, transcript)
	}))
	s.mu.Unlock()
}

func (s *CaptureSession) handleError(err error) {
	if s.opts.OnError != nil {
		s.opts.OnError(err)
	}
}

// ExecRecognizer runs an external speech-to-text program and treats every
// non-empty stdout line as a final transcript.
type ExecRecognizer struct {
	Command []string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewExecRecognizer returns nil when command is empty so that callers get
// an unavailable CaptureSession.
func NewExecRecognizer(command []string) Recognizer {
	if len(command) == 0 {
		return nil
	}
	return &ExecRecognizer{Command: command}
}

// Start launches the program.
func (r *ExecRecognizer) Start(ctx context.Context, h RecognizerHandlers) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return errors.New("capture already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, r.Command[0], r.Command[1:]...) // #nosec G204
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start %s: %w", r.Command[0], err)
	}

	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go func() {
		defer close(done)
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" && h.OnResult != nil {
				h.OnResult(line)
			}
		}
		err := cmd.Wait()
		if err != nil && runCtx.Err() == nil && h.OnError != nil {
			h.OnError(fmt.Errorf("%s: %w", r.Command[0], err))
		}

		r.mu.Lock()
		r.cancel = nil
		r.done = nil
		r.mu.Unlock()
		cancel()
		if h.OnEnd != nil {
			h.OnEnd()
		}
	}()
	return nil
}

// Stop terminates the running program and waits for it to exit.
func (r *ExecRecognizer) Stop() error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}
