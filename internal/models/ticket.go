package models

import "time"

// Ticket status values. Pending is the default on submission; only an admin
// moves a ticket forward (or back).
const (
	StatusPending    = "Pending"
	StatusInProgress = "InProgress"
	StatusResolved   = "Resolved"
)

// Ticket kinds. Complaints are recorded anonymously regardless of who files them.
const (
	KindServiceRequest = "ServiceRequest"
	KindComplaint      = "Complaint"
)

// AnonymousSubmitter is the sentinel recorded when no account is attached to
// a submission (or the submission is a Complaint).
const AnonymousSubmitter = "Anonymous"

type Ticket struct {
	Protocol       string     `json:"protocol"`
	Kind           string     `json:"kind"`
	Category       string     `json:"category"`
	LocationDetail string     `json:"location_detail"`
	Description    string     `json:"description"`
	EvidenceImage  []byte     `json:"evidence_image,omitempty"`
	Status         string     `json:"status"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	SubmittedBy    string     `json:"submitted_by"`
}
