package domain

// StaffStats is a projection derived from resolved issues. It is never stored.
type StaffStats struct {
	Resolved     int     `json:"resolved"`
	AvgTimeHours float64 `json:"avg_time_hours"`
}

// StaffMember models a government employee who triages issues.
type StaffMember struct {
	ID           string
	Name         string
	Role         Role
	DepartmentID string
	Email        string
	Phone        string
	PasswordHash string
	Stats        *StaffStats
}
