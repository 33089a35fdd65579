package cfnlogs

import (
	"context"
	"fmt"
	"os"

	"github.com/hassaku63/cfn-stack-logs/internal/logging"
	"github.com/hassaku63/cfn-stack-logs/internal/output"
)

// WriteLogs appends the report of stackID and of every nested stack below it
// to logPath, depth first. Each stack is reported at most once per call.
//
// A stack without events is logged and skipped along with its children.
// Resource listing, parsing and file errors are returned and end the walk.
func (l *LogTools) WriteLogs(ctx context.Context, stackID, logPath string) error {
	return l.writeLogs(ctx, stackID, logPath, make(map[string]struct{}))
}

func (l *LogTools) writeLogs(ctx context.Context, stackID, logPath string, visited map[string]struct{}) error {
	info, err := l.parser.Parse(stackID)
	if err != nil {
		return NewLogError(stackID, "", "parse stack id", err)
	}

	if _, seen := visited[info.Key()]; seen {
		l.logger.Warn("Stack already reported, skipping", "stack", info.StackName, "region", info.Region)
		return nil
	}
	visited[info.Key()] = struct{}{}

	events := l.GetCfnLogs(ctx, info.StackName, info.Region)
	if len(events) == 0 {
		l.logger.Error("No event logs found. Something went wrong at describe event call.",
			"stack", info.StackName, "region", info.Region)
		return nil
	}

	reason, success := output.OutcomeReason(events)
	report := output.Report{
		StackName: info.StackName,
		Region:    info.Region,
		LogPath:   logPath,
		Reason:    reason,
		Events:    events,
		TestedOn:  l.now(),
	}

	summary := l.formatter.Summary(report)
	if success {
		logging.Pass(l.logger, summary)
	} else {
		l.logger.Error(summary)
	}
	logging.Header(l.logger, "|GENERATING REPORTS")

	if err := appendFile(logPath, l.formatter.Format(report)); err != nil {
		return NewLogError(info.StackName, info.Region, "write report", err)
	}

	resources, err := l.resources.GetResources(ctx, info.StackName, info.Region, true)
	if err != nil {
		return NewLogError(info.StackName, info.Region, "list resources", err)
	}

	for _, resource := range resources {
		if !resource.IsNestedStack() {
			continue
		}
		if resource.PhysicalID == "" {
			l.logger.Warn("Nested stack has no physical id yet, skipping",
				"stack", info.StackName, "logical_id", resource.LogicalID)
			continue
		}
		if err := l.writeLogs(ctx, resource.PhysicalID, logPath, visited); err != nil {
			return err
		}
	}

	return nil
}

// appendFile appends content to path, creating the file if needed
func appendFile(path, content string) (err error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close log file: %w", cerr)
		}
	}()

	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("failed to write log file: %w", err)
	}
	return nil
}
