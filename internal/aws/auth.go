package aws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	Profile string
	Region  string

	AssumeRole *AssumeRoleCredentials
}

// AssumeRoleCredentials holds AssumeRole-specific configuration
type AssumeRoleCredentials struct {
	RoleARN     string
	SessionName string
	Duration    int32
	ExternalID  string
}

// ClientFactory hands out one rate-limited CloudFormation client per region.
// All clients share the credentials resolved when the factory was built.
type ClientFactory struct {
	defaultRegion string
	newAPI        func(region string) CloudFormationAPI

	mu      sync.Mutex
	clients map[string]*Client
}

// NewClientFactory loads the AWS configuration described by authConfig and
// returns a factory for CloudFormation clients
func NewClientFactory(ctx context.Context, authConfig AuthConfig) (*ClientFactory, error) {
	if err := validateAuthConfig(authConfig); err != nil {
		return nil, err
	}

	// Load base AWS configuration
	awsConfig, err := loadBaseConfig(ctx, authConfig)
	if err != nil {
		return nil, err
	}

	// Apply AssumeRole if specified
	if authConfig.AssumeRole != nil {
		awsConfig = applyAssumeRole(awsConfig, authConfig.AssumeRole)
	}

	return NewClientFactoryWithAPI(authConfig.Region, func(region string) CloudFormationAPI {
		return cloudformation.NewFromConfig(awsConfig, func(o *cloudformation.Options) {
			o.Region = region
		})
	}), nil
}

// NewClientFactoryWithAPI creates a factory that builds the underlying API for
// each region with newAPI
func NewClientFactoryWithAPI(defaultRegion string, newAPI func(region string) CloudFormationAPI) *ClientFactory {
	return &ClientFactory{
		defaultRegion: defaultRegion,
		newAPI:        newAPI,
		clients:       make(map[string]*Client),
	}
}

// ForRegion returns the client for region, creating it on first use.
// An empty region selects the factory's default region.
func (f *ClientFactory) ForRegion(region string) *Client {
	if region == "" {
		region = f.defaultRegion
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[region]; ok {
		return client
	}

	client := NewClient(NewRateLimitedClient(f.newAPI(region), region), region)
	f.clients[region] = client
	return client
}

// GetStackEvents returns the events of stackName in region
func (f *ClientFactory) GetStackEvents(ctx context.Context, stackName, region string) ([]types.StackEvent, error) {
	return f.ForRegion(region).GetStackEvents(ctx, stackName)
}

// ListStackResources returns the resource summaries of stackName in region
func (f *ClientFactory) ListStackResources(ctx context.Context, stackName, region string) ([]types.StackResourceSummary, error) {
	return f.ForRegion(region).ListStackResources(ctx, stackName)
}

// ValidateCredentials performs a minimal API call in the default region
func (f *ClientFactory) ValidateCredentials(ctx context.Context) error {
	return validateAWSCredentialsWithAPI(ctx, f.ForRegion("").cf)
}

// validateAuthConfig checks the fields every client needs
func validateAuthConfig(authConfig AuthConfig) error {
	if authConfig.Region == "" {
		return &Error{
			Type:    ErrorTypeInvalidRegion,
			Message: "region is required",
		}
	}
	return nil
}

// loadBaseConfig loads the base AWS configuration without AssumeRole
func loadBaseConfig(ctx context.Context, authConfig AuthConfig) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(authConfig.Region),
	}

	// Configure profile if specified
	if authConfig.Profile != "" && authConfig.Profile != "default" {
		opts = append(opts, config.WithSharedConfigProfile(authConfig.Profile))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, &Error{
			Type:    ErrorTypePermission,
			Message: fmt.Sprintf("failed to load AWS config for profile '%s' in region '%s'", authConfig.Profile, authConfig.Region),
			Cause:   err,
		}
	}

	return awsConfig, nil
}

// applyAssumeRole applies AssumeRole configuration to the AWS config
func applyAssumeRole(awsConfig aws.Config, roleConfig *AssumeRoleCredentials) aws.Config {
	stsClient := sts.NewFromConfig(awsConfig)

	provider := stscreds.NewAssumeRoleProvider(stsClient, roleConfig.RoleARN, func(o *stscreds.AssumeRoleOptions) {
		o.RoleSessionName = roleConfig.SessionName
		o.Duration = time.Duration(roleConfig.Duration) * time.Second
		if roleConfig.ExternalID != "" {
			o.ExternalID = aws.String(roleConfig.ExternalID)
		}
	})

	assumedConfig := awsConfig.Copy()
	assumedConfig.Credentials = aws.NewCredentialsCache(provider)

	return assumedConfig
}

// stackLister is the single call needed to prove the credentials work
type stackLister interface {
	ListStacks(ctx context.Context, params *cloudformation.ListStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.ListStacksOutput, error)
}

// validateAWSCredentialsWithAPI validates credentials with a minimal ListStacks request
func validateAWSCredentialsWithAPI(ctx context.Context, client stackLister) error {
	_, err := client.ListStacks(ctx, &cloudformation.ListStacksInput{})

	if err != nil {
		return &Error{
			Type:    ErrorTypePermission,
			Message: "failed to validate AWS credentials",
			Cause:   err,
		}
	}

	return nil
}
