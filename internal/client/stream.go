package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	"github.com/docuflow/console/internal/session"
)

// StreamClient subscribes to the per-session event stream. One subscription
// observes one session; a dropped stream is surfaced and never redialed —
// reconnection is a policy decision that belongs to whoever owns the client.
type StreamClient struct {
	baseURL     string
	readTimeout time.Duration
}

// NewStreamClient creates a client for the given HTTP base URL. The stream
// endpoint is derived from it (http→ws, https→wss). readTimeout bounds each
// wait for the next frame; zero means wait indefinitely, which is the right
// default for workflows that block on a human for minutes.
func NewStreamClient(baseURL string, readTimeout time.Duration) *StreamClient {
	return &StreamClient{baseURL: baseURL, readTimeout: readTimeout}
}

// --- Bubble Tea messages ---

// StreamConnectedMsg is sent when the event stream is established. Sub is
// the lifecycle handle; the receiver owns its release.
type StreamConnectedMsg struct{ Sub *Subscription }

// StreamDisconnectedMsg is sent when the stream drops or cannot be dialed.
// It carries no session-level verdict: a drop is a transport fault, not a
// workflow error.
type StreamDisconnectedMsg struct{ Err error }

// StreamEventMsg delivers one decoded stream event.
type StreamEventMsg struct{ Event session.Event }

// Subscribe returns a command that dials the session's event stream once.
// It yields StreamConnectedMsg on success or StreamDisconnectedMsg on
// failure; there is no retry.
func (c *StreamClient) Subscribe(ctx context.Context, sessionID string) tea.Cmd {
	return func() tea.Msg {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.streamURL(sessionID), nil)
		if err != nil {
			return StreamDisconnectedMsg{Err: fmt.Errorf("dial event stream: %w", err)}
		}
		return StreamConnectedMsg{Sub: &Subscription{sessionID: sessionID, conn: conn}}
	}
}

// ReadLoop returns a command that reads frames until one decodes to a known
// event, then yields it. Unknown kinds and malformed frames are skipped. On
// any transport error the subscription is closed and a
// StreamDisconnectedMsg is yielded; events already in flight are never
// delivered after that.
func (c *StreamClient) ReadLoop(sub *Subscription) tea.Cmd {
	return func() tea.Msg {
		conn := sub.connection()
		if conn == nil {
			return StreamDisconnectedMsg{Err: fmt.Errorf("subscription is closed")}
		}
		for {
			if c.readTimeout > 0 {
				conn.SetReadDeadline(time.Now().Add(c.readTimeout))
			}
			_, data, err := conn.ReadMessage()
			if err != nil {
				sub.Close()
				if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					return StreamDisconnectedMsg{}
				}
				return StreamDisconnectedMsg{Err: err}
			}

			var env Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				continue
			}
			if ev, ok := decodeEvent(env); ok {
				return StreamEventMsg{Event: ev}
			}
		}
	}
}

// decodeEvent maps a wire envelope onto the state machine's event union.
func decodeEvent(env Envelope) (session.Event, bool) {
	switch session.Kind(env.Event) {
	case session.KindConnected:
		return session.Event{Kind: session.KindConnected}, true

	case session.KindWorkflowStarted:
		return session.Event{Kind: session.KindWorkflowStarted}, true

	case session.KindProgress:
		var p ProgressPayload
		if json.Unmarshal(env.Data, &p) != nil {
			return session.Event{}, false
		}
		return session.Event{
			Kind: session.KindProgress,
			Progress: &session.ProgressEntry{
				Phase:      p.Phase,
				Status:     session.ProgressStatus(p.Status),
				ObservedAt: p.Timestamp,
			},
		}, true

	case session.KindExecutorCompleted:
		var p ExecutorCompletedPayload
		if json.Unmarshal(env.Data, &p) != nil {
			return session.Event{}, false
		}
		return session.Event{Kind: session.KindExecutorCompleted, ExecutorID: p.ExecutorID}, true

	case session.KindApprovalRequired:
		var p ApprovalRequiredPayload
		if json.Unmarshal(env.Data, &p) != nil {
			return session.Event{}, false
		}
		received := p.Timestamp
		if received.IsZero() {
			received = time.Now()
		}
		return session.Event{
			Kind: session.KindApprovalRequired,
			Approval: &session.ApprovalRequest{
				RequestID:  p.RequestID,
				ApprovalID: p.ApprovalID,
				Title:      p.Title,
				Message:    p.Message,
				SourceURI:  p.SourceURI,
				Preview:    p.Preview,
				ReceivedAt: received,
			},
		}, true

	case session.KindHITLStatus:
		var p HITLStatusPayload
		if json.Unmarshal(env.Data, &p) != nil {
			return session.Event{}, false
		}
		return session.Event{Kind: session.KindHITLStatus, HITLStatus: p.Status}, true

	case session.KindWaitingApproval:
		return session.Event{Kind: session.KindWaitingApproval}, true

	case session.KindWorkflowCompleted:
		var p CompletedPayload
		if json.Unmarshal(env.Data, &p) != nil {
			return session.Event{}, false
		}
		return session.Event{
			Kind:   session.KindWorkflowCompleted,
			Result: &session.WorkflowResult{Result: p.Result, CompletedAt: p.Timestamp},
		}, true

	case session.KindError:
		// The error payload may be absent entirely; the state machine
		// substitutes a fallback message.
		var p ErrorPayload
		if len(env.Data) > 0 {
			_ = json.Unmarshal(env.Data, &p)
		}
		return session.Event{Kind: session.KindError, Message: p.Message}, true
	}
	return session.Event{}, false
}

// streamURL converts the HTTP base URL into the per-session WS endpoint.
func (c *StreamClient) streamURL(sessionID string) string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL + "/api/workflow/" + sessionID + "/events"
	}
	switch {
	case u.Scheme == "https":
		u.Scheme = "wss"
	case strings.HasPrefix(u.Scheme, "ws"):
		// Already a WS URL.
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/workflow/" + sessionID + "/events"
	return u.String()
}
