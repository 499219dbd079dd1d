package bootstrap

import "context"

// Lifecycle actions recorded for this service.
const (
	AuditServerStart    = "TIMEOFF_API_START"
	AuditServerShutdown = "TIMEOFF_API_SHUTDOWN"
)

type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

// AuditLogger records operational events that must survive log filtering,
// server start and stop among them.
type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
