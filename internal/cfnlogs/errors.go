package cfnlogs

import "fmt"

// LogError represents a failure while producing the logs of one stack
type LogError struct {
	StackName string
	Region    string
	Operation string
	Cause     error
}

func (e *LogError) Error() string {
	if e.Region == "" {
		return fmt.Sprintf("log error for stack %q during %s: %v", e.StackName, e.Operation, e.Cause)
	}
	return fmt.Sprintf("log error for stack %q in %s during %s: %v", e.StackName, e.Region, e.Operation, e.Cause)
}

func (e *LogError) Unwrap() error {
	return e.Cause
}

// NewLogError creates a new log error
func NewLogError(stackName, region, operation string, cause error) *LogError {
	return &LogError{
		StackName: stackName,
		Region:    region,
		Operation: operation,
		Cause:     cause,
	}
}
