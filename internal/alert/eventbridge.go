package alert

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"

	"github.com/dwsmith1983/feedwatch/pkg/types"
)

// EventBridge event envelope.
const (
	eventSource     = "feedwatch"
	eventDetailType = "FeedStatusAlert"
)

// EventBridgeAPI is the subset of the EventBridge client used by EventBridgeSink.
type EventBridgeAPI interface {
	PutEvents(ctx context.Context, input *eventbridge.PutEventsInput, opts ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventBridgeSink publishes alerts to an EventBridge bus.
type EventBridgeSink struct {
	client  EventBridgeAPI
	busName string
}

// EventBridgeSinkOption configures an EventBridgeSink.
type EventBridgeSinkOption func(*EventBridgeSink)

// WithEventBridgeClient sets a custom EventBridge client.
func WithEventBridgeClient(c EventBridgeAPI) EventBridgeSinkOption {
	return func(s *EventBridgeSink) { s.client = c }
}

// NewEventBridgeSink creates an EventBridge alert sink.
func NewEventBridgeSink(busName string, opts ...EventBridgeSinkOption) (*EventBridgeSink, error) {
	if busName == "" {
		return nil, fmt.Errorf("EventBridge bus name required")
	}
	s := &EventBridgeSink{busName: busName}
	for _, o := range opts {
		o(s)
	}
	if s.client == nil {
		cfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		s.client = eventbridge.NewFromConfig(cfg)
	}
	return s, nil
}

// Name returns the sink identifier.
func (s *EventBridgeSink) Name() string { return "eventbridge" }

// Send puts the alert as the detail of one event.
func (s *EventBridgeSink) Send(ctx context.Context, alert types.Alert) error {
	detail, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshaling alert: %w", err)
	}

	out, err := s.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []ebtypes.PutEventsRequestEntry{{
			EventBusName: aws.String(s.busName),
			Source:       aws.String(eventSource),
			DetailType:   aws.String(eventDetailType),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(alert.Timestamp),
		}},
	})
	if err != nil {
		return fmt.Errorf("publishing to EventBridge: %w", err)
	}
	if out.FailedEntryCount > 0 && len(out.Entries) > 0 {
		e := out.Entries[0]
		return fmt.Errorf("EventBridge rejected event: %s: %s", aws.ToString(e.ErrorCode), aws.ToString(e.ErrorMessage))
	}
	return nil
}
