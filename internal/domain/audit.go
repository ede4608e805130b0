package domain

import "time"

// AuditEntry is an immutable record of an administrative change.
type AuditEntry struct {
	ID        string
	Actor     string
	Action    string
	Target    string
	Before    map[string]any
	After     map[string]any
	CreatedAt time.Time
}
