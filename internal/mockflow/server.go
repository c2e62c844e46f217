// Package mockflow is a scripted stand-in for the real workflow engine.
// It speaks the full wire contract — start, per-session event stream,
// approval decisions, status — and replays a configurable scenario, so the
// console and its tests can run without the engine.
package mockflow

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/docuflow/console/internal/client"
	"github.com/docuflow/console/internal/session"
)

type flowSession struct {
	id          string
	documentURI string
	title       string
	pageCount   int
	createdAt   time.Time

	mu     sync.Mutex
	status string
}

func (fs *flowSession) setStatus(s string) {
	fs.mu.Lock()
	fs.status = s
	fs.mu.Unlock()
}

func (fs *flowSession) getStatus() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.status
}

type pendingGate struct {
	sessionID string
	decision  chan client.Decision
}

// Server hosts the mock workflow endpoints.
type Server struct {
	scenario Scenario
	delay    time.Duration // pause between scripted events
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*flowSession
	gates    map[string]*pendingGate // keyed by request_id
}

// NewServer creates a mock server replaying the given scenario. delay is
// the pause inserted between scripted events; tests pass zero.
func NewServer(scenario Scenario, delay time.Duration) *Server {
	return &Server{
		scenario: scenario,
		delay:    delay,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		sessions: make(map[string]*flowSession),
		gates:    make(map[string]*pendingGate),
	}
}

// SetupRoutes registers the workflow API on the mux.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/workflow/start", s.handleStart)
	mux.HandleFunc("/api/workflow/approval", s.handleApproval)
	mux.HandleFunc("/api/workflow/", s.handleSessionRoutes)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req client.StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DocumentURI == "" {
		http.Error(w, "document_uri is required", http.StatusUnprocessableEntity)
		return
	}

	fs := &flowSession{
		id:          uuid.NewString(),
		documentURI: req.DocumentURI,
		title:       req.DocumentTitle,
		pageCount:   req.PageCount,
		createdAt:   time.Now().UTC(),
		status:      "initializing",
	}
	s.mu.Lock()
	s.sessions[fs.id] = fs
	s.mu.Unlock()

	writeJSON(w, client.StartResponse{
		SessionID: fs.id,
		Message:   "Workflow session created. Connect to /api/workflow/{session_id}/events for real-time updates.",
	})
}

func (s *Server) handleApproval(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var d client.Decision
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, "invalid decision", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	gate, ok := s.gates[d.RequestID]
	if ok {
		delete(s.gates, d.RequestID)
	}
	s.mu.Unlock()
	if !ok {
		http.Error(w, "approval request not found", http.StatusNotFound)
		return
	}

	gate.decision <- d

	verdict := "rejected"
	if d.Approved {
		verdict = "granted"
	}
	writeJSON(w, client.DecisionAck{
		Status:     "success",
		Message:    "Approval " + verdict,
		ApprovalID: d.ApprovalID,
	})
}

// handleSessionRoutes serves /api/workflow/{id}/events and
// /api/workflow/{id}/status.
func (s *Server) handleSessionRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/workflow/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}
	sessionID, op := parts[0], parts[1]

	s.mu.Lock()
	fs, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "workflow session not found", http.StatusNotFound)
		return
	}

	switch op {
	case "status":
		writeJSON(w, client.SessionStatus{
			Status:      fs.getStatus(),
			DocumentURI: fs.documentURI,
			CreatedAt:   fs.createdAt.Format(time.RFC3339),
		})
	case "events":
		s.streamEvents(w, r, fs)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request, fs *flowSession) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("mockflow: upgrade error: %v", err)
		return
	}
	defer conn.Close()

	fs.setStatus("running")
	s.runScenario(conn, fs)
}

// runScenario replays the scripted event sequence on one stream. It
// returns when the script emits a terminal event or a write fails.
func (s *Server) runScenario(conn *websocket.Conn, fs *flowSession) {
	now := func() time.Time { return time.Now().UTC() }

	if s.send(conn, session.KindConnected, client.ConnectedPayload{SessionID: fs.id, Timestamp: now()}) != nil {
		return
	}
	if s.send(conn, session.KindWorkflowStarted, map[string]string{
		"session_id":   fs.id,
		"document_uri": fs.documentURI,
	}) != nil {
		return
	}

	for _, phase := range s.scenario.Phases {
		if s.send(conn, session.KindProgress, client.ProgressPayload{
			Phase: phase, Status: "running", Timestamp: now(),
		}) != nil {
			return
		}

		if phase == s.scenario.ApprovalPhase {
			approved, ok := s.runGate(conn, fs)
			if !ok {
				fs.setStatus("error")
				return
			}
			if !approved {
				fs.setStatus("completed")
				s.send(conn, session.KindWorkflowCompleted, client.CompletedPayload{
					SessionID: fs.id,
					Result:    "Document rejected by reviewer",
					Timestamp: now(),
				})
				s.closeStream(conn)
				return
			}
		}

		if s.send(conn, session.KindProgress, client.ProgressPayload{
			Phase: phase, Status: "completed", Timestamp: now(),
		}) != nil {
			return
		}
	}

	if s.send(conn, session.KindExecutorCompleted, client.ExecutorCompletedPayload{
		ExecutorID: "doc_processor", Timestamp: now(),
	}) != nil {
		return
	}

	if s.scenario.Fail {
		fs.setStatus("error")
		msg := s.scenario.FailMessage
		if msg == "" {
			msg = "workflow execution failed"
		}
		s.send(conn, session.KindError, client.ErrorPayload{Message: msg})
		s.closeStream(conn)
		return
	}

	fs.setStatus("completed")
	s.send(conn, session.KindWorkflowCompleted, client.CompletedPayload{
		SessionID: fs.id,
		Result:    s.scenario.Result,
		Timestamp: now(),
	})
	s.closeStream(conn)
}

// runGate emits the approval events and blocks until a decision arrives or
// the gate times out. The bool results are (approved, gate completed).
func (s *Server) runGate(conn *websocket.Conn, fs *flowSession) (bool, bool) {
	gate := &pendingGate{
		sessionID: fs.id,
		decision:  make(chan client.Decision, 1),
	}
	requestID := "req-" + uuid.NewString()
	approvalID := "apr-" + uuid.NewString()

	s.mu.Lock()
	s.gates[requestID] = gate
	s.mu.Unlock()

	now := time.Now().UTC()
	if s.send(conn, session.KindApprovalRequired, client.ApprovalRequiredPayload{
		RequestID:  requestID,
		ApprovalID: approvalID,
		Title:      s.scenario.ApprovalTitle,
		Message:    s.scenario.ApprovalMessage,
		SourceURI:  fs.documentURI,
		Preview:    s.scenario.Preview,
		Timestamp:  now,
	}) != nil {
		return false, false
	}
	if s.send(conn, session.KindWaitingApproval, client.WaitingPayload{Count: 1, Timestamp: now}) != nil {
		return false, false
	}
	fs.setStatus("waiting_for_approval")

	timeout := s.scenario.ApprovalTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	select {
	case d := <-gate.decision:
		hitl := "rejected"
		if d.Approved {
			hitl = "approved"
		}
		s.send(conn, session.KindHITLStatus, client.HITLStatusPayload{
			Status:     hitl,
			ApprovalID: d.ApprovalID,
			Timestamp:  time.Now().UTC(),
		})
		fs.setStatus("running")
		return d.Approved, true
	case <-time.After(timeout):
		s.mu.Lock()
		delete(s.gates, requestID)
		s.mu.Unlock()
		s.send(conn, session.KindError, client.ErrorPayload{
			Message: "Approval timeout - no response received",
		})
		s.closeStream(conn)
		return false, false
	}
}

func (s *Server) send(conn *websocket.Conn, kind session.Kind, payload interface{}) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return conn.WriteJSON(client.Envelope{Event: string(kind), Data: data})
}

func (s *Server) closeStream(conn *websocket.Conn) {
	deadline := time.Now().Add(time.Second)
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
