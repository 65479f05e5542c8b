package domain

import "time"

// IssueStatus enumerates lifecycle states for reported issues.
type IssueStatus string

const (
	IssueStatusPending    IssueStatus = "PENDING"
	IssueStatusInProgress IssueStatus = "IN_PROGRESS"
	IssueStatusResolved   IssueStatus = "RESOLVED"
	IssueStatusCritical   IssueStatus = "CRITICAL"
)

// IssueStatuses lists every status in display order.
var IssueStatuses = []IssueStatus{
	IssueStatusPending,
	IssueStatusInProgress,
	IssueStatusResolved,
	IssueStatusCritical,
}

// Valid reports whether s is a known status.
func (s IssueStatus) Valid() bool {
	switch s {
	case IssueStatusPending, IssueStatusInProgress, IssueStatusResolved, IssueStatusCritical:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s IssueStatus) Terminal() bool {
	return s == IssueStatusResolved
}

// LanguageCode identifies a supported UI/reporter language.
type LanguageCode string

const (
	LanguageEnglish LanguageCode = "en"
	LanguageHindi   LanguageCode = "hi"
)

// Valid reports whether the code is supported.
func (l LanguageCode) Valid() bool {
	return l == LanguageEnglish || l == LanguageHindi
}

// Location pins an issue on the map.
type Location struct {
	Lat     float64 `json:"lat" yaml:"lat"`
	Lng     float64 `json:"lng" yaml:"lng"`
	Ward    string  `json:"ward,omitempty" yaml:"ward"`
	Address string  `json:"address,omitempty" yaml:"address"`
}

// CitizenInfo describes who reported an issue.
type CitizenInfo struct {
	Name     string       `json:"name" yaml:"name"`
	Phone    string       `json:"phone" yaml:"phone"`
	Email    string       `json:"email,omitempty" yaml:"email"`
	Language LanguageCode `json:"language,omitempty" yaml:"language"`
}

// TimelineEntry is an immutable record of one status change.
type TimelineEntry struct {
	At     time.Time   `json:"at"`
	Status IssueStatus `json:"status"`
	Note   string      `json:"note,omitempty"`
	By     *string     `json:"by,omitempty"`
}

// InternalNote is a staff-only remark attached to an issue.
type InternalNote struct {
	ID   string    `json:"id"`
	At   time.Time `json:"at"`
	By   *string   `json:"by,omitempty"`
	Body string    `json:"body"`
}

// Issue is the aggregate for a reported civic problem.
type Issue struct {
	ID            string
	Category      string
	Description   string
	PhotoURL      string
	VoiceNoteText string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Location      Location
	Status        IssueStatus
	AssignedTo    *string
	Reporter      *CitizenInfo
	Attachments   []string
	Timeline      []TimelineEntry
	Notes         []InternalNote
}

// Clone returns a deep copy so callers never share slices or pointers.
func (i Issue) Clone() Issue {
	out := i
	if i.AssignedTo != nil {
		v := *i.AssignedTo
		out.AssignedTo = &v
	}
	if i.Reporter != nil {
		r := *i.Reporter
		out.Reporter = &r
	}
	if i.Attachments != nil {
		out.Attachments = append([]string(nil), i.Attachments...)
	}
	if i.Timeline != nil {
		out.Timeline = make([]TimelineEntry, len(i.Timeline))
		for idx, entry := range i.Timeline {
			if entry.By != nil {
				by := *entry.By
				entry.By = &by
			}
			out.Timeline[idx] = entry
		}
	}
	if i.Notes != nil {
		out.Notes = make([]InternalNote, len(i.Notes))
		for idx, note := range i.Notes {
			if note.By != nil {
				by := *note.By
				note.By = &by
			}
			out.Notes[idx] = note
		}
	}
	return out
}

// CategoryDepartments maps an issue category to the department that owns it.
type CategoryDepartments map[string]string
