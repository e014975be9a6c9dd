package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/tallerhub/taller-status/internal/core"
	"github.com/tallerhub/taller-status/internal/metrics"
)

// Message attribute names set on every published event.
const (
	AttrEventType = "taller.event"
	AttrMachine   = "taller.machine"
	AttrEntityID  = "taller.entity_id"
	AttrToStatus  = "taller.to"
)

// SQSAPI is the subset of the SQS client used by SQSPublisher.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher sends status events to an SQS queue for downstream consumers
// (notifications, reporting).
type SQSPublisher struct {
	client   SQSAPI
	queueURL string
	fifo     bool
}

// NewSQSPublisher creates a publisher for queueURL. FIFO queues are grouped by
// entity so that one vehicle's events stay ordered.
func NewSQSPublisher(client SQSAPI, queueURL string, fifo bool) *SQSPublisher {
	return &SQSPublisher{client: client, queueURL: queueURL, fifo: fifo}
}

// PublishStatusEvent implements core.EventPublisher.
func (p *SQSPublisher) PublishStatusEvent(ctx context.Context, event *core.StatusEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode status event: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:          aws.String(p.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: BuildMessageAttributes(event),
	}
	if p.fifo {
		input.MessageGroupId = aws.String(event.Machine + "#" + event.EntityID)
		input.MessageDeduplicationId = aws.String(event.ID)
	}

	if _, err := p.client.SendMessage(ctx, input); err != nil {
		metrics.EventsPublished.WithLabelValues("sqs", "error").Inc()
		return fmt.Errorf("SQS SendMessage: %w", err)
	}
	metrics.EventsPublished.WithLabelValues("sqs", "ok").Inc()
	return nil
}

// Close implements core.EventPublisher.
func (p *SQSPublisher) Close() error { return nil }

// BuildMessageAttributes creates SQS message attributes for an event so
// consumers can filter without decoding the body.
func BuildMessageAttributes(event *core.StatusEvent) map[string]types.MessageAttributeValue {
	return map[string]types.MessageAttributeValue{
		AttrEventType: {DataType: aws.String("String"), StringValue: aws.String(event.EventType)},
		AttrMachine:   {DataType: aws.String("String"), StringValue: aws.String(event.Machine)},
		AttrEntityID:  {DataType: aws.String("String"), StringValue: aws.String(event.EntityID)},
		AttrToStatus:  {DataType: aws.String("Number"), StringValue: aws.String(fmt.Sprint(event.To))},
	}
}
