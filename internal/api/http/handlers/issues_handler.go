package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/issue-admin/internal/api/dto"
	"github.com/civicdesk/issue-admin/internal/auth"
	"github.com/civicdesk/issue-admin/internal/domain"
	"github.com/civicdesk/issue-admin/internal/service"
	"github.com/civicdesk/issue-admin/internal/triage"
	apperrors "github.com/civicdesk/issue-admin/pkg/util/errorutil"
)

// IssuesHandler manages the issue dashboard, map and drawer endpoints.
type IssuesHandler struct {
	issues *service.IssueService
	org    *service.OrgService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issues *service.IssueService, org *service.OrgService) *IssuesHandler {
	return &IssuesHandler{issues: issues, org: org}
}

// ListIssues GET /issues.
func (h *IssuesHandler) ListIssues(c *fiber.Ctx) error {
	issues, err := h.issues.List(c.UserContext(), parseFilter(c))
	if err != nil {
		return err
	}
	names, err := h.org.StaffNames(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.IssueSummary, 0, len(issues))
	for _, issue := range issues {
		items = append(items, dto.NewIssueSummary(issue, names))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Categories GET /issues/categories.
func (h *IssuesHandler) Categories(c *fiber.Ctx) error {
	categories, err := h.issues.Categories(c.UserContext())
	if err != nil {
		return err
	}
	if categories == nil {
		categories = []string{}
	}
	return c.JSON(fiber.Map{"data": categories})
}

// Map GET /issues/map. Accepts the same filters as the list.
func (h *IssuesHandler) Map(c *fiber.Ctx) error {
	issues, err := h.issues.List(c.UserContext(), parseFilter(c))
	if err != nil {
		return err
	}
	pins := make([]dto.MapPin, 0, len(issues))
	for _, issue := range issues {
		pins = append(pins, dto.NewMapPin(issue))
	}
	return c.JSON(fiber.Map{"data": pins})
}

// GetIssue GET /issues/:id.
func (h *IssuesHandler) GetIssue(c *fiber.Ctx) error {
	issue, err := h.issues.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return h.detail(c, http.StatusOK, issue)
}

// ReportIssue POST /issues.
func (h *IssuesHandler) ReportIssue(c *fiber.Ctx) error {
	var req dto.ReportIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	issue, err := h.issues.Report(c.UserContext(), triage.ReportInput{
		Category:      req.Category,
		Description:   req.Description,
		PhotoURL:      req.PhotoURL,
		VoiceNoteText: req.VoiceNoteText,
		Location:      req.Location,
		Reporter:      req.Reporter,
		Attachments:   req.Attachments,
	})
	if err != nil {
		return err
	}
	return h.detail(c, http.StatusCreated, issue)
}

// Transition POST /issues/:id/transition.
func (h *IssuesHandler) Transition(c *fiber.Ctx) error {
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	issue, err := h.issues.Transition(c.UserContext(), auth.SessionFromContext(c), service.TransitionInput{
		IssueID:           c.Params("id"),
		Status:            req.Status,
		Note:              req.Note,
		ExpectedUpdatedAt: req.ExpectedUpdatedAt,
	})
	if err != nil {
		return err
	}
	return h.detail(c, http.StatusOK, issue)
}

// Assign POST /issues/:id/assign.
func (h *IssuesHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	issue, err := h.issues.Assign(c.UserContext(), auth.SessionFromContext(c), service.AssignInput{
		IssueID:           c.Params("id"),
		StaffID:           req.StaffID,
		ExpectedUpdatedAt: req.ExpectedUpdatedAt,
	})
	if err != nil {
		return err
	}
	return h.detail(c, http.StatusOK, issue)
}

// AddNote POST /issues/:id/notes.
func (h *IssuesHandler) AddNote(c *fiber.Ctx) error {
	var req dto.NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	note, err := h.issues.AddNote(c.UserContext(), auth.SessionFromContext(c), service.NoteInput{
		IssueID: c.Params("id"),
		Body:    req.Body,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": note})
}

func (h *IssuesHandler) detail(c *fiber.Ctx, status int, issue *domain.Issue) error {
	names, err := h.org.StaffNames(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(status).JSON(fiber.Map{"data": dto.NewIssueDetail(*issue, names)})
}

func parseFilter(c *fiber.Ctx) triage.FilterSpec {
	return triage.FilterSpec{
		Status:     c.Query("status"),
		Category:   c.Query("category"),
		Text:       c.Query("q"),
		AssignedTo: c.Query("assigned_to"),
		Ward:       c.Query("ward"),
	}
}
