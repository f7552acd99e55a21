package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riverqueue/river"
)

type fakeLinks struct {
	link string
}

func (f *fakeLinks) Get(context.Context, string) (string, error) {
	return f.link, nil
}

func testJob(args TicketSubmittedArgs) *river.Job[TicketSubmittedArgs] {
	return &river.Job[TicketSubmittedArgs]{Args: args}
}

func TestWorkPostsToConfiguredLink(t *testing.T) {
	var received TicketSubmittedArgs
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := NewTicketSubmittedWorker(&fakeLinks{link: srv.URL}, nil)
	args := TicketSubmittedArgs{
		Protocol:    "AB12CD34",
		TicketKind:  "ServiceRequest",
		Category:    "Elevador",
		Description: "Stuck on floor 3",
		SubmittedBy: "maria",
	}
	if err := w.Work(context.Background(), testJob(args)); err != nil {
		t.Fatalf("Work: %v", err)
	}
	if received.Protocol != "AB12CD34" || received.TicketKind != "ServiceRequest" {
		t.Errorf("webhook received %+v", received)
	}
}

func TestWorkSkipsWhenLinkUnset(t *testing.T) {
	w := NewTicketSubmittedWorker(&fakeLinks{}, nil)
	if err := w.Work(context.Background(), testJob(TicketSubmittedArgs{Protocol: "AB12CD34"})); err != nil {
		t.Fatalf("Work with unset link must succeed, got %v", err)
	}
}

func TestWorkFailsOnWebhookError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := NewTicketSubmittedWorker(&fakeLinks{link: srv.URL}, nil)
	if err := w.Work(context.Background(), testJob(TicketSubmittedArgs{Protocol: "AB12CD34"})); err == nil {
		t.Error("expected non-2xx webhook response to fail the job so River retries it")
	}
}
