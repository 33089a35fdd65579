package cfnlogs

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/hassaku63/cfn-stack-logs/internal/models"
)

// GetStackEvents returns the events of the stack. API failures are logged and
// never returned: the events gathered before the failure, possibly none, are
// handed back instead so that a teardown in progress is not interrupted.
func (l *LogTools) GetStackEvents(ctx context.Context, stackName, region string) []types.StackEvent {
	events, err := l.events.GetStackEvents(ctx, stackName, region)
	if err != nil {
		l.logger.Error(fmt.Sprintf("Error trying to get the events for stack [%s] in region [%s]", stackName, region),
			"error", err,
			"events_collected", len(events))
	}
	return events
}

// GetCfnLogs fetches the events of the stack in reporting shape
func (l *LogTools) GetCfnLogs(ctx context.Context, stackName, region string) []models.StackEvent {
	l.logger.Info("Collecting logs", "stack", stackName, "region", region)
	return NormalizeEvents(l.GetStackEvents(ctx, stackName, region))
}

// NormalizeEvents projects raw API events onto models.StackEvent, keeping order.
// A missing status reason becomes the empty string.
func NormalizeEvents(events []types.StackEvent) []models.StackEvent {
	normalized := make([]models.StackEvent, 0, len(events))
	for _, event := range events {
		normalized = append(normalized, convertToModel(event))
	}
	return normalized
}

func convertToModel(event types.StackEvent) models.StackEvent {
	e := models.StackEvent{
		ResourceStatus: string(event.ResourceStatus),
	}

	if event.Timestamp != nil {
		e.TimeStamp = *event.Timestamp
	}
	if event.ResourceType != nil {
		e.ResourceType = *event.ResourceType
	}
	if event.LogicalResourceId != nil {
		e.LogicalResourceID = *event.LogicalResourceId
	}
	if event.ResourceStatusReason != nil {
		e.ResourceStatusReason = *event.ResourceStatusReason
	}

	return e
}
