// Package counter keeps lightweight operational counters in Redis. Counts
// are best-effort: a cache outage loses increments but never affects request
// handling.
package counter

import (
	"context"
	"strconv"

	"github.com/deceroacien/backend/internal/pkg/cache"
)

const (
	webhookTopicsKey = "metrics:webhook:topics"
	leadSourcesKey   = "metrics:leads:sources"
	grantChecksKey   = "metrics:grants:checks"
)

// AddWebhookNotification increments the per-topic webhook delivery counter.
func AddWebhookNotification(topic string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, webhookTopicsKey, topic, 1).Err()
}

// AddLeadSubmission increments the per-source download-lead counter.
func AddLeadSubmission(source string) error {
	if source == "" {
		source = "unknown"
	}
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, leadSourcesKey, source, 1).Err()
}

// AddGrantCheck counts grant-link verifications by result.
func AddGrantCheck(ok bool) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, grantChecksKey, strconv.FormatBool(ok), 1).Err()
}

// WebhookTopicCounts returns the accumulated per-topic webhook counts.
func WebhookTopicCounts() (map[string]int64, error) {
	ctx := context.Background()
	raw, err := cache.GetClient().HGetAll(ctx, webhookTopicsKey).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(raw))
	for topic, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[topic] = n
	}
	return out, nil
}
