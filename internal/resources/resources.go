package resources

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/hassaku63/cfn-stack-logs/internal/models"
)

// StackResourceSource lists the raw resource summaries of a stack
type StackResourceSource interface {
	ListStackResources(ctx context.Context, stackName, region string) ([]types.StackResourceSummary, error)
}

// Tools lists the resources that make up a stack
type Tools struct {
	source StackResourceSource
}

// NewTools creates a resource lister backed by source
func NewTools(source StackResourceSource) *Tools {
	return &Tools{source: source}
}

// GetResources returns the direct resources of stackName in region.
// Nested stack resources are only included when includeStacks is set.
func (t *Tools) GetResources(ctx context.Context, stackName, region string, includeStacks bool) ([]models.Resource, error) {
	summaries, err := t.source.ListStackResources(ctx, stackName, region)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources of stack %s in %s: %w", stackName, region, err)
	}

	var resources []models.Resource
	for _, summary := range summaries {
		resource := convertToModel(summary, stackName, region)
		if resource.IsNestedStack() && !includeStacks {
			continue
		}
		resources = append(resources, resource)
	}

	return resources, nil
}

func convertToModel(summary types.StackResourceSummary, stackName, region string) models.Resource {
	resource := models.Resource{
		Status:    string(summary.ResourceStatus),
		StackName: stackName,
		Region:    region,
	}

	if summary.LogicalResourceId != nil {
		resource.LogicalID = *summary.LogicalResourceId
	}
	if summary.PhysicalResourceId != nil {
		resource.PhysicalID = *summary.PhysicalResourceId
	}
	if summary.ResourceType != nil {
		resource.ResourceType = *summary.ResourceType
	}

	return resource
}
