// Package app wires the workflow clients, the session state machine, and
// the views into the root Bubble Tea model. The model owns the stream
// subscription handle and guarantees it is released exactly once: on the
// session reaching a terminal phase, or on quit, whichever comes first.
package app

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/docuflow/console/internal/client"
	"github.com/docuflow/console/internal/session"
	"github.com/docuflow/console/internal/views/approval"
	"github.com/docuflow/console/internal/views/status"
	"github.com/docuflow/console/internal/views/timeline"
)

// StartedMsg is sent when the workflow start call succeeds.
type StartedMsg struct{ Resp *client.StartResponse }

// StartFailedMsg is sent when the workflow start call fails. No stream is
// opened after it.
type StartFailedMsg struct{ Err error }

// SubmitOKMsg is sent when a decision submission is acknowledged.
type SubmitOKMsg struct{ Ack *client.DecisionAck }

// SubmitFailedMsg is sent when a decision submission fails. The pending
// slot was already cleared and stays cleared.
type SubmitFailedMsg struct{ Err error }

// Model is the root Bubble Tea model.
type Model struct {
	http   *client.HTTPClient
	stream *client.StreamClient
	ctx    context.Context
	cancel context.CancelFunc

	doc  client.StartRequest
	keys KeyMap

	width  int
	height int

	state *session.State
	sub   *client.Subscription

	statusBar status.Model
	timeline  timeline.Model
	approval  approval.Model

	showApproval bool
}

// New creates the root model for one workflow run.
func New(httpClient *client.HTTPClient, streamClient *client.StreamClient, doc client.StartRequest) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		http:      httpClient,
		stream:    streamClient,
		ctx:       ctx,
		cancel:    cancel,
		doc:       doc,
		keys:      DefaultKeyMap(),
		state:     session.New(),
		statusBar: status.New(),
		timeline:  timeline.New(),
		approval:  approval.New(),
	}
}

// State exposes a snapshot of the session projection.
func (m Model) State() *session.State {
	return m.state.Snapshot()
}

// Subscription exposes the stream handle (nil before the stream opens).
func (m Model) Subscription() *client.Subscription {
	return m.sub
}

// Init issues the workflow start request.
func (m Model) Init() tea.Cmd {
	return m.startCmd()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.timeline.Width = msg.Width
		m.approval.SetSize(msg.Width-8, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StartedMsg:
		m.state.SetConnecting(msg.Resp.SessionID)
		m.syncViews()
		return m, m.stream.Subscribe(m.ctx, msg.Resp.SessionID)

	case StartFailedMsg:
		m.state.StartFailed(msg.Err)
		m.syncViews()
		return m, nil

	case client.StreamConnectedMsg:
		m.sub = msg.Sub
		return m, m.stream.ReadLoop(m.sub)

	case client.StreamEventMsg:
		return m.handleEvent(msg.Event)

	case client.StreamDisconnectedMsg:
		m.sub.Close()
		m.state.StreamLost(msg.Err)
		m.syncViews()
		return m, nil

	case SubmitOKMsg:
		return m, nil

	case SubmitFailedMsg:
		m.state.SubmitFailed(msg.Err)
		m.syncViews()
		return m, nil
	}

	if m.showApproval {
		var cmd tea.Cmd
		m.approval, cmd = m.approval.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleEvent applies one stream event and schedules the next read. Once
// the session is terminal the subscription is released and no further
// reads are issued.
func (m Model) handleEvent(ev session.Event) (tea.Model, tea.Cmd) {
	m.state.Apply(ev)

	if ev.Kind == session.KindApprovalRequired && m.state.Pending != nil &&
		ev.Approval != nil && m.state.Pending.RequestID == ev.Approval.RequestID {
		m.approval.SetRequest(*m.state.Pending)
		m.showApproval = true
	}

	m.syncViews()

	if m.state.Phase.Terminal() {
		m.sub.Close()
		m.showApproval = false
		return m, nil
	}
	return m, m.stream.ReadLoop(m.sub)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m.quit()
	}

	if m.showApproval {
		switch {
		case key.Matches(msg, m.keys.Toggle):
			m.approval.Toggle()
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			return m.submitDecision()
		case key.Matches(msg, m.keys.Escape):
			m.showApproval = false
			return m, nil
		}
		var cmd tea.Cmd
		m.approval, cmd = m.approval.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Approval):
		if m.state.Pending != nil {
			m.approval.SetRequest(*m.state.Pending)
			m.showApproval = true
		}
		return m, nil
	}
	return m, nil
}

// submitDecision clears the pending slot immediately and then issues the
// decision request. The clear is not undone if the request later fails.
func (m Model) submitDecision() (tea.Model, tea.Cmd) {
	req := m.state.ClearPending()
	m.showApproval = false
	if req == nil {
		return m, nil
	}
	d := client.Decision{
		RequestID:  req.RequestID,
		ApprovalID: req.ApprovalID,
		Approved:   m.approval.Approved,
		Comment:    m.approval.Comment(),
	}
	m.syncViews()
	return m, m.submitCmd(d)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	m.sub.Close()
	return m, tea.Quit
}

func (m *Model) syncViews() {
	snap := m.state.Snapshot()
	m.statusBar.Connected = snap.Connected
	m.statusBar.Phase = snap.Phase
	m.statusBar.SessionID = snap.SessionID
	m.statusBar.Fault = snap.Fault
	m.timeline.Entries = snap.Progress
	m.timeline.ExecutorsDone = snap.ExecutorsDone
	m.timeline.Result = snap.Result
}

func (m Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		resp, err := m.http.StartWorkflow(m.doc)
		if err != nil {
			return StartFailedMsg{Err: err}
		}
		return StartedMsg{Resp: resp}
	}
}

func (m Model) submitCmd(d client.Decision) tea.Cmd {
	return func() tea.Msg {
		ack, err := m.http.SubmitApproval(d)
		if err != nil {
			return SubmitFailedMsg{Err: err}
		}
		return SubmitOKMsg{Ack: ack}
	}
}

// View renders the console.
func (m Model) View() string {
	body := m.statusBar.View() + "\n" + m.timeline.View()

	if m.showApproval {
		overlay := m.approval.View()
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
	}
	return body
}
