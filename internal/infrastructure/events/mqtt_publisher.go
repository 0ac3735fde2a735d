package events

import (
	"context"
	"fmt"
	"strings"

	"logipro/internal/domain/tracking"
)

type jsonPublisher interface {
	PublishJSON(ctx context.Context, topic string, qos byte, v interface{}) error
}

// MQTTPublisher sends status events to <prefix>/jobs/<job_number>/status.
type MQTTPublisher struct {
	client jsonPublisher
	prefix string
	qos    byte
}

func NewMQTTPublisher(client jsonPublisher, prefix string, qos int) *MQTTPublisher {
	if qos < 0 || qos > 2 {
		qos = 1
	}
	return &MQTTPublisher{
		client: client,
		prefix: strings.Trim(prefix, "/"),
		qos:    byte(qos),
	}
}

func (p *MQTTPublisher) Topic(jobNumber int64) string {
	return fmt.Sprintf("%s/jobs/%d/status", p.prefix, jobNumber)
}

func (p *MQTTPublisher) PublishStatus(ctx context.Context, event tracking.StatusEvent) error {
	if err := p.client.PublishJSON(ctx, p.Topic(event.JobNumber), p.qos, event); err != nil {
		return fmt.Errorf("failed to publish status event: %w", err)
	}
	return nil
}
