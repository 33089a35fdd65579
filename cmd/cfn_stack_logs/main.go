package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/hassaku63/cfn-stack-logs/internal/aws"
	"github.com/hassaku63/cfn-stack-logs/internal/cfnlogs"
	"github.com/hassaku63/cfn-stack-logs/internal/config"
	"github.com/hassaku63/cfn-stack-logs/internal/logging"
	"github.com/hassaku63/cfn-stack-logs/internal/resources"
	"github.com/hassaku63/cfn-stack-logs/internal/stackid"
	"github.com/spf13/cobra"
)

var (
	profile      string
	region       string
	logDir       string
	logLevel     string
	logJSON      bool
	stackIDs     []string
	manifestPath string

	// AssumeRole parameters
	assumeRole  string
	sessionName string
	duration    int32
	externalID  string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "cfn_stack_logs",
		Short: "Write CloudFormation event logs for test stacks",
		Long: `cfn_stack_logs collects the CloudFormation events of each given stack and of
every nested stack below it, and appends a readable report per stack to
<log-dir>/<stack>-<region>-cfnlogs.txt.`,
		RunE:         runCommand,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVarP(&profile, "profile", "p", "default", "AWS profile name")
	rootCmd.Flags().StringVarP(&region, "region", "r", "", "Default AWS region (required)")
	rootCmd.Flags().StringVarP(&logDir, "log-dir", "d", ".", "Directory the log files are written to")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Console log level (trace, debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&logJSON, "log-json", false, "Emit console logs as JSON")
	rootCmd.Flags().StringSliceVarP(&stackIDs, "stack-id", "s", nil, "Stack ARN to log (repeatable)")
	rootCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "YAML manifest listing test runs and their stacks")

	// AssumeRole flags
	rootCmd.Flags().StringVar(&assumeRole, "assume-role", "", "ARN of the IAM role to assume")
	rootCmd.Flags().StringVar(&sessionName, "session-name", "cfn-stack-logs-session", "Session name for the assumed role session")
	rootCmd.Flags().Int32Var(&duration, "duration", 3600, "Session duration in seconds (900-43200)")
	rootCmd.Flags().StringVar(&externalID, "external-id", "", "External ID for AssumeRole (required by some roles for security)")

	rootCmd.MarkFlagRequired("region")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config, w io.Writer) (hclog.Logger, error) {
	return logging.New("cfn-stack-logs", logging.Options{
		Level:  cfg.LogLevel,
		Output: w,
		JSON:   cfg.LogJSON,
		Color:  true,
	})
}

func runCommand(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Create configuration
	cfg := config.Config{
		Profile:      profile,
		Region:       region,
		LogDir:       logDir,
		LogLevel:     logLevel,
		LogJSON:      logJSON,
		StackIDs:     stackIDs,
		ManifestPath: manifestPath,
	}

	// Add AssumeRole configuration if specified
	if assumeRole != "" {
		cfg.AssumeRole = &config.AssumeRoleConfig{
			RoleARN:     assumeRole,
			SessionName: sessionName,
			Duration:    duration,
			ExternalID:  externalID,
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	tests, err := collectTests(cfg)
	if err != nil {
		return err
	}

	factory, err := createClientFactory(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create AWS client: %w", err)
	}

	return runLogs(ctx, cfg, tests, factory, logger)
}

// createClientFactory creates and validates the CloudFormation client factory
func createClientFactory(ctx context.Context, cfg config.Config) (*aws.ClientFactory, error) {
	auth := aws.AuthConfig{
		Profile: cfg.Profile,
		Region:  cfg.Region,
	}

	// Add AssumeRole configuration if present
	if cfg.AssumeRole != nil {
		auth.AssumeRole = &aws.AssumeRoleCredentials{
			RoleARN:     cfg.AssumeRole.RoleARN,
			SessionName: cfg.AssumeRole.SessionName,
			Duration:    cfg.AssumeRole.Duration,
			ExternalID:  cfg.AssumeRole.ExternalID,
		}
	}

	factory, err := aws.NewClientFactory(ctx, auth)
	if err != nil {
		return nil, err
	}

	if err := factory.ValidateCredentials(ctx); err != nil {
		return nil, fmt.Errorf("AWS credentials validation failed: %w", err)
	}

	return factory, nil
}

// collectTests gathers the test runs from the manifest and the --stack-id flags
func collectTests(cfg config.Config) ([]cfnlogs.TestRun, error) {
	var tests []cfnlogs.TestRun

	if cfg.ManifestPath != "" {
		manifest, err := config.LoadManifest(cfg.ManifestPath)
		if err != nil {
			return nil, err
		}
		for _, test := range manifest.Tests {
			tests = append(tests, test)
		}
	}

	if len(cfg.StackIDs) > 0 {
		tests = append(tests, config.StackIDTest(cfg.StackIDs))
	}

	return tests, nil
}

// runLogs writes the log files for every test stack
func runLogs(ctx context.Context, cfg config.Config, tests []cfnlogs.TestRun, factory *aws.ClientFactory, logger hclog.Logger) error {
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	tools := cfnlogs.NewLogTools(factory, resources.NewTools(factory), stackid.NewParser(), logger)

	return tools.CreateLogs(ctx, tests, cfg.LogDir)
}
