package domain

// Department is an organizational unit such as Sanitation or Roads. Staff
// belong to exactly one; categories are routed to one.
type Department struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description"`
}
