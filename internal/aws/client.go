package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
)

// CloudFormationAPI defines the interface for CloudFormation operations
// This interface enables mocking for testing
type CloudFormationAPI interface {
	ListStacks(ctx context.Context, params *cloudformation.ListStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.ListStacksOutput, error)
	DescribeStackEvents(ctx context.Context, params *cloudformation.DescribeStackEventsInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStackEventsOutput, error)
	ListStackResources(ctx context.Context, params *cloudformation.ListStackResourcesInput, optFns ...func(*cloudformation.Options)) (*cloudformation.ListStackResourcesOutput, error)
}

// Client wraps AWS CloudFormation client with additional functionality
type Client struct {
	cf     CloudFormationAPI
	region string
}

// NewClient creates a new AWS client wrapper
func NewClient(cf CloudFormationAPI, region string) *Client {
	return &Client{
		cf:     cf,
		region: region,
	}
}

// Region returns the region the client talks to
func (c *Client) Region() string {
	return c.region
}

// GetStackEvents returns every event of the stack, page by page. A repeated
// NextToken ends the listing. On failure the events collected so far are
// returned together with the error.
func (c *Client) GetStackEvents(ctx context.Context, stackName string) ([]types.StackEvent, error) {
	input := &cloudformation.DescribeStackEventsInput{
		StackName: &stackName,
	}

	var events []types.StackEvent
	paginator := cloudformation.NewDescribeStackEventsPaginator(c.cf, input)

	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return events, err
		}
		events = append(events, output.StackEvents...)
	}

	return events, nil
}

// ListStackResources returns the summaries of all resources in the stack
func (c *Client) ListStackResources(ctx context.Context, stackName string) ([]types.StackResourceSummary, error) {
	input := &cloudformation.ListStackResourcesInput{
		StackName: &stackName,
	}

	var summaries []types.StackResourceSummary
	paginator := cloudformation.NewListStackResourcesPaginator(c.cf, input)

	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, output.StackResourceSummaries...)
	}

	return summaries, nil
}
