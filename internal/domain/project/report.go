package project

import (
	"strings"
	"time"

	"github.com/handwerk/backoffice/internal/domain/shared"
)

// DefaultWorkType labels reports that were filed without a work type
const DefaultWorkType = "Allgemeine Arbeiten"

// Report is a narrative site report
type Report struct {
	shared.TenantEntity
	ProjectID  int64
	Title      string
	Content    string
	ReportDate time.Time
	WorkType   string
	Status     string
}

// NewReport creates a site report
func NewReport(tenantID, projectID int64, title, content, workType string, reportDate time.Time) (*Report, error) {
	title = strings.TrimSpace(title)
	if projectID <= 0 {
		return nil, shared.NewInvalidArgumentError("report requires a project")
	}
	if title == "" {
		return nil, shared.NewInvalidArgumentError("report title cannot be empty")
	}
	if reportDate.IsZero() {
		reportDate = time.Now()
	}
	reportDate = Day(reportDate)
	return &Report{
		TenantEntity: shared.NewTenantEntity(tenantID),
		ProjectID:    projectID,
		Title:        title,
		Content:      content,
		ReportDate:   reportDate,
		WorkType:     strings.TrimSpace(workType),
		Status:       "entwurf",
	}, nil
}

// WorkTypeLabel returns the work type, or the generic label when none was given
func (r *Report) WorkTypeLabel() string {
	if r.WorkType == "" {
		return DefaultWorkType
	}
	return r.WorkType
}
