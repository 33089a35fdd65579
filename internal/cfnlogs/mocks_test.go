package cfnlogs

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/hashicorp/go-hclog"
	"github.com/hassaku63/cfn-stack-logs/internal/models"
	"github.com/hassaku63/cfn-stack-logs/internal/stackid"
)

// mockEventSource serves events per "region/stack" key
type mockEventSource struct {
	events map[string][]types.StackEvent
	errs   map[string]error
	calls  []string
}

func (m *mockEventSource) GetStackEvents(ctx context.Context, stackName, region string) ([]types.StackEvent, error) {
	key := region + "/" + stackName
	m.calls = append(m.calls, key)
	return m.events[key], m.errs[key]
}

// mockResourceLister serves resources per "region/stack" key
type mockResourceLister struct {
	resources map[string][]models.Resource
	errs      map[string]error
	calls     []string
}

func (m *mockResourceLister) GetResources(ctx context.Context, stackName, region string, includeStacks bool) ([]models.Resource, error) {
	key := region + "/" + stackName
	m.calls = append(m.calls, key)
	if err := m.errs[key]; err != nil {
		return nil, err
	}
	return m.resources[key], nil
}

func stackARN(name, region string) string {
	return fmt.Sprintf("arn:aws:cloudformation:%s:123456789012:stack/%s/0a1b2c3d", region, name)
}

func rawEvent(logicalID string, status types.ResourceStatus, reason string) types.StackEvent {
	event := types.StackEvent{
		Timestamp:         aws.Time(time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC)),
		ResourceStatus:    status,
		ResourceType:      aws.String("AWS::CloudFormation::Stack"),
		LogicalResourceId: aws.String(logicalID),
		StackName:         aws.String(logicalID),
	}
	if reason != "" {
		event.ResourceStatusReason = aws.String(reason)
	}
	return event
}

func nestedStack(logicalID, name, region string) models.Resource {
	return models.Resource{
		LogicalID:    logicalID,
		PhysicalID:   stackARN(name, region),
		ResourceType: models.ResourceTypeStack,
		Status:       "CREATE_COMPLETE",
	}
}

type fixture struct {
	events    *mockEventSource
	resources *mockResourceLister
	logs      *bytes.Buffer
	tools     *LogTools
}

var fixedNow = time.Date(2023, 10, 2, 15, 4, 0, 0, time.UTC)

func newFixture() *fixture {
	f := &fixture{
		events: &mockEventSource{
			events: map[string][]types.StackEvent{},
			errs:   map[string]error{},
		},
		resources: &mockResourceLister{
			resources: map[string][]models.Resource{},
			errs:      map[string]error{},
		},
		logs: &bytes.Buffer{},
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "test",
		Level:  hclog.Debug,
		Output: f.logs,
	})

	f.tools = NewLogTools(f.events, f.resources, stackid.NewParser(), logger,
		WithClock(func() time.Time { return fixedNow }))
	return f
}
