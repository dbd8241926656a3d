package domain

// ContextEntry records the last compared branches for one group.
type ContextEntry struct {
	Description string `json:"description"`
	Reference   string `json:"reference,omitempty"`
	Test        string `json:"test,omitempty"`
}

// Set records an identifier for the given run type.
func (e *ContextEntry) Set(t RunType, identifier string) {
	switch t {
	case RunTypeReference:
		e.Reference = identifier
	case RunTypeTest:
		e.Test = identifier
	}
}

// RunContext maps a group key to its last run record.
type RunContext map[string]ContextEntry

// Clone returns a deep copy.
func (c RunContext) Clone() RunContext {
	out := make(RunContext, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
