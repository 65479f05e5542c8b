package domain

// IntegrityKind names a dangling reference found in the store.
type IntegrityKind string

const (
	IntegrityUnknownAssignee   IntegrityKind = "UNKNOWN_ASSIGNEE"
	IntegrityUnknownDepartment IntegrityKind = "UNKNOWN_DEPARTMENT"
	IntegrityUnknownActor      IntegrityKind = "UNKNOWN_ACTOR"
)

// IntegrityWarning reports a weak reference that no longer resolves.
// Views degrade to "Unassigned"/"Unknown"; it is never fatal.
type IntegrityWarning struct {
	Kind     IntegrityKind `json:"kind"`
	EntityID string        `json:"entity_id"`
	Ref      string        `json:"ref"`
}
