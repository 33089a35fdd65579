package cfnlogs

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/hashicorp/go-hclog"
	"github.com/hassaku63/cfn-stack-logs/internal/models"
	"github.com/hassaku63/cfn-stack-logs/internal/output"
)

// EventSource defines the stack event lookup needed by LogTools
type EventSource interface {
	GetStackEvents(ctx context.Context, stackName, region string) ([]types.StackEvent, error)
}

// ResourceLister lists the resources of a stack
type ResourceLister interface {
	GetResources(ctx context.Context, stackName, region string, includeStacks bool) ([]models.Resource, error)
}

// StackParser resolves a stack identifier to its name and region
type StackParser interface {
	Parse(stackID string) (models.StackInfo, error)
}

// LogTools collects CloudFormation stack events and writes them as text reports
type LogTools struct {
	events    EventSource
	resources ResourceLister
	parser    StackParser
	logger    hclog.Logger
	formatter *output.TextFormatter
	now       func() time.Time
}

// Option customises LogTools
type Option func(*LogTools)

// WithClock sets the clock used for report timestamps
func WithClock(now func() time.Time) Option {
	return func(l *LogTools) {
		l.now = now
	}
}

// NewLogTools creates LogTools from its collaborators. A nil logger discards output.
func NewLogTools(events EventSource, resources ResourceLister, parser StackParser, logger hclog.Logger, opts ...Option) *LogTools {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	l := &LogTools{
		events:    events,
		resources: resources,
		parser:    parser,
		logger:    logger,
		formatter: &output.TextFormatter{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}
