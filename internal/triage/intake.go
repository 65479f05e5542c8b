package triage

import (
	"strings"
	"time"

	"github.com/civicdesk/issue-admin/internal/domain"
	apperrors "github.com/civicdesk/issue-admin/pkg/util/errorutil"
)

// ReportInput is a citizen report as received from an intake channel.
type ReportInput struct {
	Category      string
	Description   string
	PhotoURL      string
	VoiceNoteText string
	Location      domain.Location
	Reporter      *domain.CitizenInfo
	Attachments   []string
}

// NewIssue builds a PENDING issue whose timeline opens with the report itself.
func NewIssue(id string, input ReportInput, now time.Time) (domain.Issue, error) {
	category := strings.TrimSpace(input.Category)
	description := strings.TrimSpace(input.Description)
	if category == "" || description == "" {
		return domain.Issue{}, apperrors.NewValidationError("category and description required", nil)
	}
	if input.Reporter != nil && input.Reporter.Language != "" && !input.Reporter.Language.Valid() {
		return domain.Issue{}, apperrors.NewValidationError("unsupported reporter language", map[string]any{"language": input.Reporter.Language})
	}

	issue := domain.Issue{
		ID:            id,
		Category:      category,
		Description:   description,
		PhotoURL:      input.PhotoURL,
		VoiceNoteText: input.VoiceNoteText,
		CreatedAt:     now,
		UpdatedAt:     now,
		Location:      input.Location,
		Status:        domain.IssueStatusPending,
		Attachments:   append([]string(nil), input.Attachments...),
		Timeline: []domain.TimelineEntry{
			{At: now, Status: domain.IssueStatusPending, Note: "Reported by citizen"},
		},
	}
	if input.Reporter != nil {
		reporter := *input.Reporter
		issue.Reporter = &reporter
	}
	return issue, nil
}
