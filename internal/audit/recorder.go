// Package audit persists the immutable access trail. Recording is always
// best-effort: a storage or stream failure is logged and swallowed so an
// audit outage can never block a guest at the door.
package audit

import (
	"context"
	"time"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Publisher mirrors recorded events onto a message stream.
type Publisher interface {
	Publish(ctx context.Context, values map[string]any) (string, error)
}

// Recorder 审计记录器：每条开门尝试写入 access_logs，并可选镜像到 Redis Stream
type Recorder struct {
	logs   repository.AccessLogsRepo
	stream Publisher // nil disables stream mirroring
	logger *zap.Logger
}

func NewRecorder(logs repository.AccessLogsRepo, stream Publisher, logger *zap.Logger) *Recorder {
	return &Recorder{logs: logs, stream: stream, logger: logger}
}

// Record assigns the entry identity, appends it to the table and mirrors it
// to the stream. It never returns an error.
func (r *Recorder) Record(ctx context.Context, entry *domain.AccessLogEntry) {
	if entry.LogID == "" {
		entry.LogID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if err := r.logs.Insert(ctx, entry); err != nil {
		r.logger.Warn("Failed to persist access log entry",
			zap.String("log_id", entry.LogID),
			zap.String("device_id", entry.DeviceID),
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}

	if r.stream == nil {
		return
	}
	values := entry.ToJSON()
	values["created_at"] = entry.CreatedAt.Format(time.RFC3339)
	if _, err := r.stream.Publish(ctx, values); err != nil {
		r.logger.Warn("Failed to publish access event to stream",
			zap.String("log_id", entry.LogID),
			zap.Error(err),
		)
	}
}
