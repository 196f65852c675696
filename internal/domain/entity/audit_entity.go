package entity

// AuditEntry records an authentication event. Empty fields are stored as NULL.
type AuditEntry struct {
	UserID    string
	Username  string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
}
