package sync

import "context"

// LogRepository stores the append-only sync activity log.
type LogRepository interface {
	AddSyncLog(ctx context.Context, e *LogEntry) error
	// ListSyncLogs returns the newest entries first.
	ListSyncLogs(ctx context.Context, limit int) ([]LogEntry, error)
	ClearSyncLogs(ctx context.Context) error
}

type SchemaRepository interface {
	PutSchema(ctx context.Context, b *SchemaBlob) error
	GetSchema(ctx context.Context, name string) (*SchemaBlob, error)
	ListSchemas(ctx context.Context) ([]SchemaBlob, error)
}
