// Package stackid extracts the stack name and region from CloudFormation stack IDs.
package stackid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/hassaku63/cfn-stack-logs/internal/models"
)

// ErrInvalidStackID is returned for identifiers that are not CloudFormation stack ARNs
var ErrInvalidStackID = errors.New("invalid stack id")

// Parser parses stack ARNs of the form
// arn:<partition>:cloudformation:<region>:<account>:stack/<name>/<uuid>
type Parser struct{}

// NewParser creates a new stack id parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse returns the stack name and region encoded in stackID
func (p *Parser) Parse(stackID string) (models.StackInfo, error) {
	parsed, err := arn.Parse(stackID)
	if err != nil {
		return models.StackInfo{}, fmt.Errorf("%w %q: %v", ErrInvalidStackID, stackID, err)
	}

	if parsed.Service != "cloudformation" {
		return models.StackInfo{}, fmt.Errorf("%w %q: service is %q", ErrInvalidStackID, stackID, parsed.Service)
	}

	parts := strings.Split(parsed.Resource, "/")
	if len(parts) < 2 || parts[0] != "stack" || parts[1] == "" {
		return models.StackInfo{}, fmt.Errorf("%w %q: resource %q is not a stack", ErrInvalidStackID, stackID, parsed.Resource)
	}

	if parsed.Region == "" {
		return models.StackInfo{}, fmt.Errorf("%w %q: missing region", ErrInvalidStackID, stackID)
	}

	return models.StackInfo{
		StackName: parts[1],
		Region:    parsed.Region,
	}, nil
}
