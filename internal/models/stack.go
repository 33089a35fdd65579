package models

// StackInfo identifies a stack by name within a region
type StackInfo struct {
	StackName string `json:"stackName"`
	Region    string `json:"region"`
}

// Key returns a value unique to the stack across regions
func (s StackInfo) Key() string {
	return s.Region + "/" + s.StackName
}

// TestStack is a top-level stack launched by a test run
type TestStack struct {
	StackID string `json:"stackId" yaml:"stack_id"`
}

// Resource is a single resource reported by a stack
type Resource struct {
	LogicalID    string `json:"logicalId"`
	PhysicalID   string `json:"physicalId"`
	ResourceType string `json:"resourceType"`
	Status       string `json:"status"`
	StackName    string `json:"stackName"`
	Region       string `json:"region"`
}

// ResourceTypeStack marks a resource whose physical resource is another stack
const ResourceTypeStack = "AWS::CloudFormation::Stack"

// IsNestedStack reports whether the resource is a nested stack
func (r Resource) IsNestedStack() bool {
	return r.ResourceType == ResourceTypeStack
}
