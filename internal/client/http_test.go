package client

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStartWorkflow(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/workflow/start" {
			t.Errorf("path = %s, want /api/workflow/start", r.URL.Path)
		}
		var req StartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.DocumentURI != "https://docs/contract.pdf" {
			t.Errorf("document_uri = %q", req.DocumentURI)
		}
		if req.PageCount != 12 {
			t.Errorf("page_count = %d, want 12", req.PageCount)
		}
		json.NewEncoder(w).Encode(StartResponse{SessionID: "sess-1"})
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL, time.Second)
	resp, err := c.StartWorkflow(StartRequest{
		DocumentURI:   "https://docs/contract.pdf",
		DocumentTitle: "Contract",
		PageCount:     12,
	})
	if err != nil {
		t.Fatalf("StartWorkflow error: %v", err)
	}
	if resp.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want sess-1", resp.SessionID)
	}
}

func TestStartWorkflowFailure(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"server error", http.StatusInternalServerError},
		{"not found", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", tt.status)
			}))
			defer ts.Close()

			c := NewHTTPClient(ts.URL, time.Second)
			_, err := c.StartWorkflow(StartRequest{DocumentURI: "x"})
			if !errors.Is(err, ErrStartFailed) {
				t.Errorf("err = %v, want ErrStartFailed", err)
			}
		})
	}
}

func TestStartWorkflowTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	ts.Close() // refuse all connections

	c := NewHTTPClient(ts.URL, time.Second)
	_, err := c.StartWorkflow(StartRequest{DocumentURI: "x"})
	if !errors.Is(err, ErrStartFailed) {
		t.Errorf("err = %v, want ErrStartFailed", err)
	}
}

func TestStartWorkflowMissingSessionID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(StartResponse{})
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL, time.Second)
	_, err := c.StartWorkflow(StartRequest{DocumentURI: "x"})
	if !errors.Is(err, ErrStartFailed) {
		t.Errorf("err = %v, want ErrStartFailed", err)
	}
}

func TestSubmitApprovalCommentOmission(t *testing.T) {
	tests := []struct {
		name        string
		comment     string
		wantPresent bool
	}{
		{"empty comment omitted", "", false},
		{"comment included", "looks good", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw map[string]interface{}
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				if err := json.Unmarshal(body, &raw); err != nil {
					t.Fatalf("unmarshal body: %v", err)
				}
				json.NewEncoder(w).Encode(DecisionAck{Status: "success"})
			}))
			defer ts.Close()

			c := NewHTTPClient(ts.URL, time.Second)
			_, err := c.SubmitApproval(Decision{
				RequestID:  "r1",
				ApprovalID: "a1",
				Approved:   true,
				Comment:    tt.comment,
			})
			if err != nil {
				t.Fatalf("SubmitApproval error: %v", err)
			}

			if raw["request_id"] != "r1" || raw["approval_id"] != "a1" {
				t.Errorf("body = %v, want both correlation tokens", raw)
			}
			_, present := raw["comment"]
			if present != tt.wantPresent {
				t.Errorf("comment key present = %v, want %v", present, tt.wantPresent)
			}
		})
	}
}

func TestSubmitApprovalFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "approval request not found", http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL, time.Second)
	_, err := c.SubmitApproval(Decision{RequestID: "gone", ApprovalID: "gone"})
	if !errors.Is(err, ErrApprovalSubmit) {
		t.Errorf("err = %v, want ErrApprovalSubmit", err)
	}
}

func TestGetStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/workflow/sess-1/status" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(SessionStatus{Status: "running"})
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL, time.Second)
	s, err := c.GetStatus("sess-1")
	if err != nil {
		t.Fatalf("GetStatus error: %v", err)
	}
	if s.Status != "running" {
		t.Errorf("Status = %q, want running", s.Status)
	}
}
