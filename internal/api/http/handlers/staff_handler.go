package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/issue-admin/internal/api/dto"
	"github.com/civicdesk/issue-admin/internal/domain"
	"github.com/civicdesk/issue-admin/internal/service"
	apperrors "github.com/civicdesk/issue-admin/pkg/util/errorutil"
)

// StaffHandler exposes department and staff directory endpoints.
type StaffHandler struct {
	orgService *service.OrgService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(orgService *service.OrgService) *StaffHandler {
	return &StaffHandler{orgService: orgService}
}

// ListDepartments handles GET /departments.
func (h *StaffHandler) ListDepartments(c *fiber.Ctx) error {
	departments, err := h.orgService.ListDepartments(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.DepartmentResponse, 0, len(departments))
	for _, d := range departments {
		items = append(items, dto.NewDepartmentResponse(d))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateDepartment handles POST /departments.
func (h *StaffHandler) CreateDepartment(c *fiber.Ctx) error {
	var req dto.CreateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept, err := h.orgService.CreateDepartment(c.UserContext(), service.DepartmentInput{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewDepartmentResponse(*dept)})
}

// CategoryOwners handles GET /departments/categories.
func (h *StaffHandler) CategoryOwners(c *fiber.Ctx) error {
	owners, err := h.orgService.CategoryOwners(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": owners})
}

// SetCategoryOwner handles PUT /departments/categories.
func (h *StaffHandler) SetCategoryOwner(c *fiber.Ctx) error {
	var req dto.CategoryOwnerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.orgService.SetCategoryOwner(c.UserContext(), req.Category, req.DepartmentID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": req})
}

// ListStaff handles GET /staff.
func (h *StaffHandler) ListStaff(c *fiber.Ctx) error {
	staff, err := h.orgService.ListStaff(c.UserContext())
	if err != nil {
		return err
	}
	departmentID := c.Query("department_id")
	items := make([]dto.StaffResponse, 0, len(staff))
	for _, member := range staff {
		if departmentID != "" && member.DepartmentID != departmentID {
			continue
		}
		items = append(items, dto.NewStaffResponse(member))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateStaff handles POST /staff.
func (h *StaffHandler) CreateStaff(c *fiber.Ctx) error {
	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	member, err := h.orgService.CreateStaff(c.UserContext(), service.StaffInput{
		ID:           req.ID,
		Name:         req.Name,
		Role:         req.Role,
		DepartmentID: req.DepartmentID,
		Email:        req.Email,
		Phone:        req.Phone,
		Password:     req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewStaffResponse(*member)})
}

// Audit handles GET /audit. Dangling references are reported, never fatal.
func (h *StaffHandler) Audit(c *fiber.Ctx) error {
	warnings, err := h.orgService.Audit(c.UserContext())
	if err != nil {
		return err
	}
	if warnings == nil {
		warnings = []domain.IntegrityWarning{}
	}
	return c.JSON(fiber.Map{"data": warnings})
}
