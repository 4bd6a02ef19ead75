// Package transport exposes the two-endpoint HTTP surface: Start accepts a
// recommendation request and opens a session; Stream delivers that
// session's events as newline-delimited records until a terminal event.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/motorlot/recoengine/eventbus"
	"github.com/motorlot/recoengine/log"
	"github.com/motorlot/recoengine/orchestrator"
	"github.com/motorlot/recoengine/profile"
	"github.com/motorlot/recoengine/recoerrors"
)

// startRequest is the Start endpoint's request body.
type startRequest struct {
	UserProfile profile.UserProfile `json:"userProfile"`
	SessionID   string              `json:"sessionId,omitempty"`
	Limit       int                 `json:"limit,omitempty"`
}

// startResponse is the Start endpoint's immediate response, returned once
// the session is open and deterministically subscribable.
type startResponse struct {
	Success    bool   `json:"success"`
	SessionID  string `json:"sessionId"`
	StreamPath string `json:"streamPath"`
}

// errorResponse is returned in place of startResponse on a validation
// failure.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

const (
	defaultLimit = 10
	minLimit     = 1
	maxLimit     = 50
)

// Server wires the EventBus and Orchestrator to an HTTP router.
type Server struct {
	bus             *eventbus.EventBus
	orch            *orchestrator.Orchestrator
	router          *mux.Router
	originAllowlist []string
}

// New builds a Server. originAllowlist configures CORS; a nil or empty
// slice allows all origins, matching "no assumption is made" for callers
// that have not opted into a stricter policy.
func New(bus *eventbus.EventBus, orch *orchestrator.Orchestrator, originAllowlist []string) *Server {
	s := &Server{bus: bus, orch: orch, router: mux.NewRouter(), originAllowlist: originAllowlist}
	s.router.HandleFunc("/recommendations", s.handleStart).Methods(http.MethodPost)
	s.router.HandleFunc("/recommendations/{sessionId}/stream", s.handleStream).Methods(http.MethodGet)
	return s
}

// Handler returns the CORS-wrapped router, ready to pass to http.Serve.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOriginsOrWildcard(s.originAllowlist),
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

func allowedOriginsOrWildcard(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, recoerrors.NewValidationError("malformed request body"))
		return
	}
	if err := req.UserProfile.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}

	limit := req.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit < minLimit || limit > maxLimit {
		writeJSONError(w, http.StatusBadRequest, recoerrors.NewValidationError(
			fmt.Sprintf("limit must be between %d and %d", minLimit, maxLimit)))
		return
	}

	sessionID := s.orch.OpenSession(req.SessionID)

	go func() {
		ctx := context.Background()
		if _, err := s.orch.Recommend(ctx, sessionID, req.UserProfile, limit); err != nil {
			log.Warnf("transport: recommend session %s: %v", sessionID, err)
		}
	}()

	writeJSON(w, http.StatusOK, startResponse{
		Success:    true,
		SessionID:  sessionID,
		StreamPath: fmt.Sprintf("/recommendations/%s/stream", sessionID),
	})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, recoerrors.NewInternalError("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sub := s.bus.Subscribe(sessionID)
	defer sub.Close()

	ctx := r.Context()
	for {
		evt, err := sub.Next(ctx)
		if err != nil {
			return
		}
		if err := writeRecord(w, evt); err != nil {
			log.Warnf("transport: stream write session %s: %v", sessionID, err)
			return
		}
		flusher.Flush()
	}
}

// writeRecord emits one newline-delimited event record: a "type" line and
// a "data" line carrying the JSON payload, followed by a blank line.
func writeRecord(w http.ResponseWriter, evt *eventbus.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "type: %s\ndata: %s\n\n", evt.Type, payload)
	return err
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
