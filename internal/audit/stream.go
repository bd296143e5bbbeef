package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// StreamPublisher mirrors audit events onto a Redis Stream so downstream
// consumers (notifications, analytics) can react without polling the table.
type StreamPublisher struct {
	client *redis.Client
	stream string
}

// NewStreamPublisher returns nil when no Redis client is configured; the
// recorder treats a nil publisher as "stream mirroring off".
func NewStreamPublisher(client *redis.Client, stream string) *StreamPublisher {
	if client == nil || stream == "" {
		return nil
	}
	return &StreamPublisher{client: client, stream: stream}
}

// Publish XADDs the event. Values are flattened to strings because Redis
// Streams only carry flat string fields.
func (p *StreamPublisher) Publish(ctx context.Context, values map[string]any) (string, error) {
	streamValues := make(map[string]interface{}, len(values))
	for k, v := range values {
		switch val := v.(type) {
		case string:
			streamValues[k] = val
		case bool:
			if val {
				streamValues[k] = "true"
			} else {
				streamValues[k] = "false"
			}
		case int, int32, int64:
			streamValues[k] = fmt.Sprintf("%d", val)
		default:
			jsonBytes, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			streamValues[k] = string(jsonBytes)
		}
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: streamValues,
	}).Result()
}
