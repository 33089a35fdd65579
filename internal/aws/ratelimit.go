package aws

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/smithy-go"
	"golang.org/x/time/rate"
)

// RateLimitedClient wraps the AWS client with rate limiting and error handling
type RateLimitedClient struct {
	client  CloudFormationAPI
	limiter *rate.Limiter
	region  string
}

// NewRateLimitedClient creates a new rate-limited client
// AWS CloudFormation has default limits of ~10 requests per second
func NewRateLimitedClient(client CloudFormationAPI, region string) *RateLimitedClient {
	// Conservative rate limiting: 5 requests per second with burst of 10
	limiter := rate.NewLimiter(rate.Limit(5), 10)

	return &RateLimitedClient{
		client:  client,
		limiter: limiter,
		region:  region,
	}
}

// ListStacks implements CloudFormationAPI with rate limiting
func (r *RateLimitedClient) ListStacks(ctx context.Context, params *cloudformation.ListStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.ListStacksOutput, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	output, err := r.client.ListStacks(ctx, params, optFns...)
	return output, r.handleError(err)
}

// DescribeStackEvents implements CloudFormationAPI with rate limiting
func (r *RateLimitedClient) DescribeStackEvents(ctx context.Context, params *cloudformation.DescribeStackEventsInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStackEventsOutput, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	output, err := r.client.DescribeStackEvents(ctx, params, optFns...)
	return output, r.handleError(err)
}

// ListStackResources implements CloudFormationAPI with rate limiting
func (r *RateLimitedClient) ListStackResources(ctx context.Context, params *cloudformation.ListStackResourcesInput, optFns ...func(*cloudformation.Options)) (*cloudformation.ListStackResourcesOutput, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	output, err := r.client.ListStackResources(ctx, params, optFns...)
	return output, r.handleError(err)
}

func (r *RateLimitedClient) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return &Error{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit context cancelled",
			Cause:   err,
		}
	}
	return nil
}

// handleError converts AWS errors to our custom error types
func (r *RateLimitedClient) handleError(err error) error {
	if err == nil {
		return nil
	}

	// Check if it's already our custom error type
	var customErr *Error
	if errors.As(err, &customErr) {
		return err
	}

	// Handle AWS service errors
	var awsErr smithy.APIError
	if errors.As(err, &awsErr) {
		switch awsErr.ErrorCode() {
		case "AccessDenied", "AccessDeniedException", "UnauthorizedOperation":
			return &Error{
				Type:    ErrorTypePermission,
				Message: "insufficient AWS permissions",
				Cause:   err,
			}
		case "Throttling", "RequestLimitExceeded", "TooManyRequestsException":
			return &Error{
				Type:    ErrorTypeRateLimit,
				Message: "AWS API rate limit exceeded",
				Cause:   err,
			}
		case "ValidationError":
			// Missing stacks are reported as "Stack with id <name> does not exist"
			if strings.Contains(awsErr.ErrorMessage(), "does not exist") {
				return &Error{
					Type:    ErrorTypeStackNotFound,
					Message: "stack not found",
					Cause:   err,
				}
			}
		case "InvalidParameterValue":
			if strings.Contains(awsErr.ErrorMessage(), "region") {
				return &Error{
					Type:    ErrorTypeInvalidRegion,
					Message: "invalid AWS region: " + r.region,
					Cause:   err,
				}
			}
		}
	}

	// Handle context errors
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{
			Type:    ErrorTypeNetwork,
			Message: "request timeout or cancelled",
			Cause:   err,
		}
	}

	// Handle network-related errors
	errMsg := err.Error()
	if strings.Contains(errMsg, "no such host") ||
		strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "timeout") {
		return &Error{
			Type:    ErrorTypeNetwork,
			Message: "network connectivity issue",
			Cause:   err,
		}
	}

	// Default to unknown error
	return &Error{
		Type:    ErrorTypeUnknown,
		Message: "unexpected AWS API error",
		Cause:   err,
	}
}
