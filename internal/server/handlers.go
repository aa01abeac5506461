package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chatwidget/internal/chat"
	"chatwidget/internal/completion"
	"chatwidget/internal/model"
)

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type textBody struct {
	Text string `json:"text"`
}

type themeBody struct {
	Theme model.Theme `json:"theme"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// chatResponse is the bot message returned by /api/chat.
type chatResponse struct {
	ConversationID string `json:"conversation_id"`
	ID             string `json:"id"`
	Text           string `json:"text"`
	model.Block
	Failed bool `json:"failed,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHighlightCSS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	if err := s.formatter.WriteHighlightCSS(w); err != nil {
		s.logger.Warn("write highlight css", zap.Error(err))
	}
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if !s.decode(w, r, &req) {
		return
	}
	prompt, err := completion.CheckPrompt(req.Prompt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	text, err := s.completer.Complete(r.Context(), prompt)
	if err != nil {
		s.logger.Warn("completion failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, chat.FailureText)
		return
	}
	writeJSON(w, http.StatusOK, textBody{Text: text})
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req textBody
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.formatter.Format(req.Text))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if !s.decode(w, r, &req) {
		return
	}

	id := r.Header.Get(ConversationHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(ConversationHeader, id)

	msg, err := s.registry.Get(id).Submit(r.Context(), req.Prompt)
	if errors.Is(err, chat.ErrEmptyMessage) {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	resp := chatResponse{
		ConversationID: id,
		ID:             msg.ID,
		Text:           msg.Text,
		Block:          msg.Block,
		Failed:         msg.Failed,
	}
	if err != nil {
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTheme(w http.ResponseWriter, _ *http.Request) {
	theme, err := s.themes.Load()
	if err != nil {
		s.logger.Warn("load theme", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load theme")
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: theme})
}

func (s *Server) handlePutTheme(w http.ResponseWriter, r *http.Request) {
	var req themeBody
	if !s.decode(w, r, &req) {
		return
	}
	theme, err := model.ParseTheme(string(req.Theme))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.themes.Save(theme); err != nil {
		s.logger.Warn("save theme", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save theme")
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: theme})
}

// decode reads a size-limited JSON body into v and writes the error
// response itself when it fails.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxPromptBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
