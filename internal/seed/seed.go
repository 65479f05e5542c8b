// Package seed loads the demo dataset used by development servers, the CLI
// and tests.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/civicdesk/issue-admin/internal/domain"
	"github.com/civicdesk/issue-admin/internal/repository"
	"github.com/civicdesk/issue-admin/internal/triage"
)

//go:embed dataset.yaml
var defaultDataset []byte

// Dataset is the YAML fixture format.
type Dataset struct {
	Departments         []domain.Department `yaml:"departments"`
	CategoryDepartments map[string]string   `yaml:"category_departments"`
	Staff               []staffDoc          `yaml:"staff"`
	Issues              []issueDoc          `yaml:"issues"`
	Notifications       []notificationDoc   `yaml:"notifications"`
}

type staffDoc struct {
	ID           string      `yaml:"id"`
	Name         string      `yaml:"name"`
	Role         domain.Role `yaml:"role"`
	DepartmentID string      `yaml:"department_id"`
	Email        string      `yaml:"email"`
	Phone        string      `yaml:"phone"`
}

type timelineDoc struct {
	Ago    time.Duration      `yaml:"ago"`
	Status domain.IssueStatus `yaml:"status"`
	Note   string             `yaml:"note"`
	By     string             `yaml:"by"`
}

type issueDoc struct {
	ID            string              `yaml:"id"`
	Category      string              `yaml:"category"`
	Description   string              `yaml:"description"`
	PhotoURL      string              `yaml:"photo_url"`
	VoiceNoteText string              `yaml:"voice_note_text"`
	CreatedAgo    time.Duration       `yaml:"created_ago"`
	UpdatedAgo    time.Duration       `yaml:"updated_ago"`
	Location      domain.Location     `yaml:"location"`
	Status        domain.IssueStatus  `yaml:"status"`
	AssignedTo    string              `yaml:"assigned_to"`
	Reporter      *domain.CitizenInfo `yaml:"reporter"`
	Attachments   []string            `yaml:"attachments"`
	Timeline      []timelineDoc       `yaml:"timeline"`
}

type notificationDoc struct {
	ID      string                  `yaml:"id"`
	Type    domain.NotificationType `yaml:"type"`
	Title   string                  `yaml:"title"`
	Message string                  `yaml:"message"`
	Ago     time.Duration           `yaml:"ago"`
	IssueID string                  `yaml:"issue_id"`
}

// Default parses the embedded dataset.
func Default() (*Dataset, error) {
	return Parse(defaultDataset)
}

// LoadFile parses a dataset from disk, falling back to the embedded one when
// path is empty.
func LoadFile(path string) (*Dataset, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML into a Dataset.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &ds, nil
}

// Build materializes the dataset relative to now. Every issue is checked
// against the timeline invariants.
func (ds *Dataset) Build(now time.Time, passwordHash string) (Fixtures, error) {
	fx := Fixtures{
		Departments: ds.Departments,
		Owners:      domain.CategoryDepartments{},
	}
	for category, deptID := range ds.CategoryDepartments {
		fx.Owners[category] = deptID
	}
	for _, s := range ds.Staff {
		if !s.Role.Valid() {
			return Fixtures{}, fmt.Errorf("staff %s: unknown role %q", s.ID, s.Role)
		}
		fx.Staff = append(fx.Staff, domain.StaffMember{
			ID:           s.ID,
			Name:         s.Name,
			Role:         s.Role,
			DepartmentID: s.DepartmentID,
			Email:        s.Email,
			Phone:        s.Phone,
			PasswordHash: passwordHash,
		})
	}
	for _, doc := range ds.Issues {
		issue := domain.Issue{
			ID:            doc.ID,
			Category:      doc.Category,
			Description:   doc.Description,
			PhotoURL:      doc.PhotoURL,
			VoiceNoteText: doc.VoiceNoteText,
			CreatedAt:     now.Add(-doc.CreatedAgo),
			UpdatedAt:     now.Add(-doc.UpdatedAgo),
			Location:      doc.Location,
			Status:        doc.Status,
			Reporter:      doc.Reporter,
			Attachments:   doc.Attachments,
		}
		if doc.AssignedTo != "" {
			assignee := doc.AssignedTo
			issue.AssignedTo = &assignee
		}
		for _, entry := range doc.Timeline {
			te := domain.TimelineEntry{At: now.Add(-entry.Ago), Status: entry.Status, Note: entry.Note}
			if entry.By != "" {
				by := entry.By
				te.By = &by
			}
			issue.Timeline = append(issue.Timeline, te)
		}
		if !issue.Status.Valid() {
			return Fixtures{}, fmt.Errorf("issue %s: unknown status %q", issue.ID, issue.Status)
		}
		if err := triage.CheckInvariants(issue); err != nil {
			return Fixtures{}, fmt.Errorf("issue %s: %w", issue.ID, err)
		}
		fx.Issues = append(fx.Issues, issue)
	}
	for _, doc := range ds.Notifications {
		item := domain.NotificationItem{
			ID:        doc.ID,
			Type:      doc.Type,
			Title:     doc.Title,
			Message:   doc.Message,
			CreatedAt: now.Add(-doc.Ago),
		}
		if doc.IssueID != "" {
			issueID := doc.IssueID
			item.IssueID = &issueID
		}
		fx.Notifications = append(fx.Notifications, item)
	}
	return fx, nil
}

// Fixtures is a materialized dataset.
type Fixtures struct {
	Departments   []domain.Department
	Owners        domain.CategoryDepartments
	Staff         []domain.StaffMember
	Issues        []domain.Issue
	Notifications []domain.NotificationItem
}

// StaffNames maps staff ids to display names.
func (fx Fixtures) StaffNames() map[string]string {
	out := make(map[string]string, len(fx.Staff))
	for _, s := range fx.Staff {
		out[s.ID] = s.Name
	}
	return out
}

// Apply writes the fixtures into store. Departments go first so staff
// references resolve.
func Apply(ctx context.Context, store *repository.Store, fx Fixtures) error {
	for _, dept := range fx.Departments {
		if err := store.Departments.Create(ctx, dept); err != nil {
			return fmt.Errorf("seed department %s: %w", dept.ID, err)
		}
	}
	for category, deptID := range fx.Owners {
		if err := store.Departments.SetCategoryOwner(ctx, category, deptID); err != nil {
			return fmt.Errorf("seed category %s: %w", category, err)
		}
	}
	for _, member := range fx.Staff {
		if err := store.Staff.Create(ctx, member); err != nil {
			return fmt.Errorf("seed staff %s: %w", member.ID, err)
		}
	}
	for _, issue := range fx.Issues {
		if err := store.Issues.Create(ctx, issue); err != nil {
			return fmt.Errorf("seed issue %s: %w", issue.ID, err)
		}
	}
	for _, item := range fx.Notifications {
		if err := store.Notifications.Create(ctx, item); err != nil {
			return fmt.Errorf("seed notification %s: %w", item.ID, err)
		}
	}
	return nil
}
