package cfnlogs

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hassaku63/cfn-stack-logs/internal/models"
)

// TestRun is a test whose launched stacks should be logged
type TestRun interface {
	TestStacks() []models.TestStack
}

// LogPath returns the log file for a top-level stack:
// <logDir>/<stack name>-<region>-cfnlogs.txt
func LogPath(logDir string, info models.StackInfo) string {
	return filepath.Join(logDir, fmt.Sprintf("%s-%s-cfnlogs.txt", info.StackName, info.Region))
}

// CreateLogs writes one log file per top-level stack of every test, in order.
// The first error stops the run.
func (l *LogTools) CreateLogs(ctx context.Context, tests []TestRun, logDir string) error {
	l.logger.Info("Collecting CloudFormation Logs")

	for _, test := range tests {
		for _, stack := range test.TestStacks() {
			info, err := l.parser.Parse(stack.StackID)
			if err != nil {
				return NewLogError(stack.StackID, "", "parse stack id", err)
			}

			if err := l.WriteLogs(ctx, stack.StackID, LogPath(logDir, info)); err != nil {
				return err
			}
		}
	}

	return nil
}
