package config

import (
	"fmt"
	"os"

	"github.com/hassaku63/cfn-stack-logs/internal/logging"
	"github.com/hassaku63/cfn-stack-logs/internal/models"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Profile  string
	Region   string
	LogDir   string
	LogLevel string
	LogJSON  bool

	// Stacks to log, given directly or through a manifest file
	StackIDs     []string
	ManifestPath string

	// AssumeRole configuration
	AssumeRole *AssumeRoleConfig
}

// AssumeRoleConfig holds AssumeRole-specific configuration
type AssumeRoleConfig struct {
	RoleARN     string `json:"roleArn"`
	SessionName string `json:"sessionName"`
	Duration    int32  `json:"duration"`

	ExternalID string `json:"externalId,omitempty"`
}

// Validate checks the configuration before any AWS call is made
func (c *Config) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}

	if len(c.StackIDs) == 0 && c.ManifestPath == "" {
		return fmt.Errorf("at least one --stack-id or a --manifest is required")
	}

	if c.LogDir == "" {
		return fmt.Errorf("log directory cannot be empty")
	}

	if c.LogLevel != "" && !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log level '%s'", c.LogLevel)
	}

	if c.AssumeRole != nil {
		if err := c.AssumeRole.Validate(); err != nil {
			return fmt.Errorf("AssumeRole configuration invalid: %w", err)
		}
	}

	return nil
}

// Validate validates the AssumeRole configuration
func (arc *AssumeRoleConfig) Validate() error {
	if arc.RoleARN == "" {
		return fmt.Errorf("role ARN cannot be empty when using AssumeRole")
	}

	if arc.Duration < 900 || arc.Duration > 43200 {
		return fmt.Errorf("session duration must be between 900 and 43200 seconds, got %d", arc.Duration)
	}

	if arc.SessionName == "" {
		return fmt.Errorf("session name cannot be empty")
	}

	return nil
}

// Manifest lists the test runs whose stacks should be logged
type Manifest struct {
	Tests []TestConfig `yaml:"tests"`
}

// TestConfig is one test run and the stacks it launched
type TestConfig struct {
	Name   string             `yaml:"name"`
	Stacks []models.TestStack `yaml:"stacks"`
}

// TestStacks returns the top-level stacks launched by the test
func (tc TestConfig) TestStacks() []models.TestStack {
	return tc.Stacks
}

// LoadManifest reads and validates a YAML manifest
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	for i, test := range manifest.Tests {
		for j, stack := range test.Stacks {
			if stack.StackID == "" {
				return nil, fmt.Errorf("manifest %s: test %d (%q) stack %d has no stack_id", path, i, test.Name, j)
			}
		}
	}

	return &manifest, nil
}

// StackIDTest wraps stack ids given on the command line as a single test run
type StackIDTest []string

// TestStacks returns one stack per id
func (s StackIDTest) TestStacks() []models.TestStack {
	stacks := make([]models.TestStack, 0, len(s))
	for _, id := range s {
		stacks = append(stacks, models.TestStack{StackID: id})
	}
	return stacks
}
