// Package server exposes the generation flow over HTTP. It classifies user
// input errors apart from configuration errors and records every successful
// generation into the history store.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"chartchat/internal/chart"
	"chartchat/internal/config"
	"chartchat/internal/dataset"
	"chartchat/internal/history"
	"chartchat/internal/logger"
	"chartchat/internal/orchestrator"
)

// Generator is the orchestrator surface the server needs; kept small so
// tests can stub it.
type Generator interface {
	GenerateOrAdjust(ctx context.Context, req orchestrator.Request) (*orchestrator.Result, error)
}

// Server routes the chart generation API.
type Server struct {
	gen    Generator
	store  *history.Store
	apiKey string
	mux    *http.ServeMux
}

// New wires the routes. apiKey is checked per request so a misconfigured
// deployment answers with a clear service error instead of failing at boot.
func New(gen Generator, store *history.Store, cfg config.LLMConfig) *Server {
	s := &Server{gen: gen, store: store, apiKey: cfg.APIKey, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /api/generate-chart", s.handleGenerate)
	s.mux.HandleFunc("GET /api/history", s.handleHistory)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// filePayload is an uploaded file. Content is raw text unless encoding says
// base64 (binary formats like xlsx need it).
type filePayload struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Encoding string `json:"encoding,omitempty"`
	Format   string `json:"format,omitempty"`
}

// generateRequest accepts both the simple shape {request} and the
// conversational shape {message, chatHistory, currentCharts?, fileData?}.
type generateRequest struct {
	Request       string                      `json:"request"`
	Message       string                      `json:"message"`
	SessionID     string                      `json:"sessionId"`
	ChatHistory   []chart.ConversationMessage `json:"chatHistory"`
	CurrentCharts []chart.Spec                `json:"currentCharts"`
	FileData      *filePayload                `json:"fileData"`
}

type generateResponse struct {
	Charts       []chart.Spec `json:"charts"`
	IsAdjustment bool         `json:"isAdjustment"`
	Explanation  string       `json:"explanation,omitempty"`
	SessionID    string       `json:"sessionId,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message := body.Message
	if message == "" {
		message = body.Request
	}
	if message == "" && body.FileData == nil {
		writeError(w, http.StatusBadRequest, "invalid request, provide a chart description")
		return
	}
	if s.apiKey == "" {
		writeError(w, http.StatusInternalServerError, "OpenAI API key not configured, set OPENAI_API_KEY")
		return
	}

	var tab *dataset.Tabular
	if body.FileData != nil {
		var err error
		tab, err = s.ingestFile(body.FileData)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	result, err := s.gen.GenerateOrAdjust(r.Context(), orchestrator.Request{
		UserMessage:   message,
		History:       body.ChatHistory,
		CurrentCharts: body.CurrentCharts,
		Dataset:       tab,
	})
	if err != nil {
		logger.L.Error("generation failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if result.ErrorMessage != "" {
		writeError(w, http.StatusBadRequest, result.ErrorMessage)
		return
	}

	sessionID := body.SessionID
	if sessionID == "" {
		sessionID = s.store.CreateSession(message, result.Charts, body.ChatHistory)
	} else {
		s.store.AppendVersion(sessionID, message, result.Charts, result.IsAdjustment, body.ChatHistory)
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Charts:       result.Charts,
		IsAdjustment: result.IsAdjustment,
		Explanation:  result.Explanation,
		SessionID:    sessionID,
	})
}

func (s *Server) ingestFile(file *filePayload) (*dataset.Tabular, error) {
	raw := []byte(file.Content)
	if file.Encoding == "base64" {
		decoded, err := base64.StdEncoding.DecodeString(file.Content)
		if err != nil {
			return nil, &dataset.Error{Kind: dataset.KindMalformed, Message: "file content is not valid base64"}
		}
		raw = decoded
	}

	format := dataset.Format(file.Format)
	if format == "" {
		detected, ok := dataset.DetectFormat(file.Filename)
		if !ok {
			return nil, &dataset.Error{Kind: dataset.KindUnsupportedFormat, Message: "unsupported file type, use .csv, .json, .xlsx or .xls"}
		}
		format = detected
	}

	tab, err := dataset.Ingest(file.Filename, raw, format)
	if err != nil {
		return nil, err
	}
	if err := dataset.Validate(tab); err != nil {
		return nil, err
	}
	return tab, nil
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Sessions())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
