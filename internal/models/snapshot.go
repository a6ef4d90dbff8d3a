package models

// Snapshot is an immutable, named checkpoint of an environment's full
// directory state. Ref is the commit the tag points at.
type Snapshot struct {
	Name        string `json:"name"`
	Ref         string `json:"ref"`
	Description string `json:"description,omitempty"`
}

// ShortRef returns an abbreviated history reference for display.
func (s Snapshot) ShortRef() string {
	if len(s.Ref) > 8 {
		return s.Ref[:8]
	}
	return s.Ref
}
