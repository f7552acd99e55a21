package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/riverqueue/river"

	"github.com/condopro/backend/internal/models"
)

// TicketSubmittedArgs is the payload enqueued (in the same transaction as the
// ticket insert) when a new ticket is filed.
type TicketSubmittedArgs struct {
	Protocol       string `json:"protocol"`
	TicketKind     string `json:"kind"`
	Category       string `json:"category"`
	LocationDetail string `json:"location_detail"`
	Description    string `json:"description"`
	SubmittedBy    string `json:"submitted_by"`
}

func (TicketSubmittedArgs) Kind() string { return "ticket_submitted" }

// LinkSource resolves the configured notification webhook. Wired to the
// settings service in main.
type LinkSource interface {
	Get(ctx context.Context, key string) (string, error)
}

type TicketSubmittedWorker struct {
	river.WorkerDefaults[TicketSubmittedArgs]
	links      LinkSource
	httpClient *http.Client
	log        *slog.Logger
}

func NewTicketSubmittedWorker(links LinkSource, log *slog.Logger) *TicketSubmittedWorker {
	if log == nil {
		log = slog.Default()
	}
	return &TicketSubmittedWorker{
		links:      links,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

func (w *TicketSubmittedWorker) Work(ctx context.Context, job *river.Job[TicketSubmittedArgs]) error {
	link, err := w.links.Get(ctx, models.SettingWhatsAppUrgentLink)
	if err != nil {
		return fmt.Errorf("resolving notification link: %w", err)
	}
	if link == "" {
		// The building manager has not configured a group link yet.
		w.log.Info("notification link not configured, skipping", "protocol", job.Args.Protocol)
		return nil
	}

	body, err := json.Marshal(job.Args)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, link, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("network error calling notification webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}
	w.log.Info("submission notification delivered", "protocol", job.Args.Protocol)
	return nil
}
