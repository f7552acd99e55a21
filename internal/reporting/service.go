package reporting

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/condopro/backend/internal/models"
)

// ResolvedLister provides the resolved ticket set; wired to the tickets
// service in main.
type ResolvedLister interface {
	ListResolved(ctx context.Context) ([]*models.Ticket, error)
}

// Row is one line of the completed-tickets report.
type Row struct {
	Protocol       string `json:"protocol"`
	Kind           string `json:"kind"`
	Category       string `json:"category"`
	SubmittedAt    string `json:"submitted_at"`
	ResolvedAt     string `json:"resolved_at"`
	ResolutionTime string `json:"resolution_time"`
	SubmittedBy    string `json:"submitted_by"`
}

// Summary is the completed-tickets report: a count plus a tabular projection.
type Summary struct {
	Count int   `json:"count"`
	Rows  []Row `json:"rows"`
}

type Service interface {
	ResolvedSummary(ctx context.Context) (*Summary, error)
	ExportXLSX(ctx context.Context) ([]byte, error)
}

type service struct {
	tickets ResolvedLister
}

func NewService(tickets ResolvedLister) *service {
	return &service{tickets: tickets}
}

var _ Service = (*service)(nil)

func (s *service) ResolvedSummary(ctx context.Context) (*Summary, error) {
	list, err := s.tickets.ListResolved(ctx)
	if err != nil {
		return nil, err
	}
	summary := &Summary{Count: len(list), Rows: make([]Row, 0, len(list))}
	for _, t := range list {
		summary.Rows = append(summary.Rows, ticketToRow(t))
	}
	return summary, nil
}

func ticketToRow(t *models.Ticket) Row {
	row := Row{
		Protocol:       t.Protocol,
		Kind:           t.Kind,
		Category:       t.Category,
		SubmittedAt:    FormatTimestamp(t.SubmittedAt),
		ResolutionTime: DurationUnavailable,
		SubmittedBy:    t.SubmittedBy,
	}
	if t.ResolvedAt != nil {
		row.ResolvedAt = FormatTimestamp(*t.ResolvedAt)
		row.ResolutionTime = ResolutionDuration(row.SubmittedAt, row.ResolvedAt)
	}
	return row
}

var exportHeader = []string{
	"Protocol",
	"Kind",
	"Category",
	"Submitted At",
	"Resolved At",
	"Resolution Time",
	"Submitted By",
}

// ExportXLSX renders the completed-tickets report as an Excel workbook.
func (s *service) ExportXLSX(ctx context.Context) ([]byte, error) {
	summary, err := s.ResolvedSummary(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Resolved Tickets"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for col, header := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}
	for i, row := range summary.Rows {
		values := []string{row.Protocol, row.Kind, row.Category, row.SubmittedAt, row.ResolvedAt, row.ResolutionTime, row.SubmittedBy}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
