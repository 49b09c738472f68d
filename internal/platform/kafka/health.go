package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// HealthChecker checks Kafka broker connectivity through an admin metadata
// request on an existing client.
type HealthChecker struct {
	admin   *kadm.Client
	timeout time.Duration
}

// NewHealthChecker creates a health checker on top of a producer's client.
func NewHealthChecker(client *kgo.Client) *HealthChecker {
	return &HealthChecker{
		admin:   kadm.NewClient(client),
		timeout: 5 * time.Second,
	}
}

// Check verifies that at least one broker answers a metadata request.
func (h *HealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	meta, err := h.admin.BrokerMetadata(ctx)
	if err != nil {
		return fmt.Errorf("kafka metadata: %w", err)
	}
	if len(meta.Brokers) == 0 {
		return fmt.Errorf("no kafka brokers available")
	}
	return nil
}

// Name returns the check name for health reporting.
func (h *HealthChecker) Name() string {
	return "kafka"
}
