package dto

import "github.com/civicdesk/issue-admin/internal/domain"

// StaffLoginRequest payload.
type StaffLoginRequest struct {
	Email    string              `json:"email"`
	Password string              `json:"password"`
	Role     domain.Role         `json:"role"`
	Lang     domain.LanguageCode `json:"lang"`
}

// LanguageRequest switches the session language.
type LanguageRequest struct {
	Lang domain.LanguageCode `json:"lang"`
}

// CreateDepartmentRequest payload.
type CreateDepartmentRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateStaffRequest payload.
type CreateStaffRequest struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Role         domain.Role `json:"role"`
	DepartmentID string      `json:"department_id"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	Password     string      `json:"password"`
}

// CategoryOwnerRequest routes a category to a department.
type CategoryOwnerRequest struct {
	Category     string `json:"category"`
	DepartmentID string `json:"department_id"`
}

// DepartmentResponse response.
type DepartmentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// StaffResponse response. The password hash is never serialized.
type StaffResponse struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Role         domain.Role        `json:"role"`
	DepartmentID string             `json:"department_id"`
	Email        string             `json:"email"`
	Phone        string             `json:"phone,omitempty"`
	Stats        *domain.StaffStats `json:"stats,omitempty"`
}

// NewDepartmentResponse maps a department.
func NewDepartmentResponse(d domain.Department) DepartmentResponse {
	return DepartmentResponse{ID: d.ID, Name: d.Name, Description: d.Description}
}

// NewStaffResponse maps a staff member.
func NewStaffResponse(s domain.StaffMember) StaffResponse {
	return StaffResponse{
		ID:           s.ID,
		Name:         s.Name,
		Role:         s.Role,
		DepartmentID: s.DepartmentID,
		Email:        s.Email,
		Phone:        s.Phone,
		Stats:        s.Stats,
	}
}
