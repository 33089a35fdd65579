package cfnlogs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/hassaku63/cfn-stack-logs/internal/models"
	"github.com/hassaku63/cfn-stack-logs/internal/output"
	"github.com/hassaku63/cfn-stack-logs/internal/stackid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blockHeader = "Region: "

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestLogTools_WriteLogs_NoEvents(t *testing.T) {
	f := newFixture()
	f.events.errs["us-east-1/parent"] = assert.AnError
	logPath := filepath.Join(t.TempDir(), "parent-us-east-1-cfnlogs.txt")

	err := f.tools.WriteLogs(context.Background(), stackARN("parent", "us-east-1"), logPath)

	require.NoError(t, err)
	_, statErr := os.Stat(logPath)
	assert.True(t, os.IsNotExist(statErr), "no file should be created for a stack without events")
	assert.Contains(t, f.logs.String(), "No event logs found")
	assert.Empty(t, f.resources.calls, "children should not be listed when the stack has no events")
}

func TestLogTools_WriteLogs_SingleStack(t *testing.T) {
	f := newFixture()
	f.events.events["us-east-1/parent"] = []types.StackEvent{
		rawEvent("parent", types.ResourceStatusCreateComplete, ""),
		rawEvent("parent", types.ResourceStatusCreateInProgress, "User Initiated"),
	}
	logPath := filepath.Join(t.TempDir(), "parent-us-east-1-cfnlogs.txt")

	err := f.tools.WriteLogs(context.Background(), stackARN("parent", "us-east-1"), logPath)

	require.NoError(t, err)
	content := readLog(t, logPath)
	assert.Equal(t, 1, strings.Count(content, blockHeader))
	assert.Contains(t, content, "Region: us-east-1\nStackName: parent\n")
	assert.Contains(t, content, output.SuccessReason)
	assert.Contains(t, content, "User Initiated")
	assert.Contains(t, content, "Tested on: Monday, 02. October 2023 03:04PM")

	logs := f.logs.String()
	assert.Contains(t, logs, "[INFO]")
	assert.Contains(t, logs, "nametag=PASS")
	assert.Contains(t, logs, "|GENERATING REPORTS")
	assert.Equal(t, []string{"us-east-1/parent"}, f.resources.calls)
}

func TestLogTools_WriteLogs_FailedStackLogsError(t *testing.T) {
	f := newFixture()
	f.events.events["us-east-1/parent"] = []types.StackEvent{
		rawEvent("parent", types.ResourceStatusRollbackComplete, ""),
	}
	logPath := filepath.Join(t.TempDir(), "parent.txt")

	require.NoError(t, f.tools.WriteLogs(context.Background(), stackARN("parent", "us-east-1"), logPath))

	assert.Contains(t, readLog(t, logPath), "ResourceStatusReason:  \n"+output.UnknownReason+"\n")
	assert.Contains(t, f.logs.String(), "[ERROR]")
	assert.NotContains(t, f.logs.String(), "nametag=PASS")
}

func TestLogTools_WriteLogs_RecursesOnlyIntoNestedStacks(t *testing.T) {
	f := newFixture()
	for _, name := range []string{"parent", "child-a", "child-b"} {
		f.events.events["us-east-1/"+name] = []types.StackEvent{
			rawEvent(name, types.ResourceStatusCreateComplete, ""),
		}
	}
	f.resources.resources["us-east-1/parent"] = []models.Resource{
		nestedStack("ChildA", "child-a", "us-east-1"),
		{
			LogicalID:    "Bucket",
			PhysicalID:   stackARN("not-a-stack", "us-east-1"),
			ResourceType: "AWS::S3::Bucket",
		},
		nestedStack("ChildB", "child-b", "us-east-1"),
	}
	logPath := filepath.Join(t.TempDir(), "parent.txt")

	err := f.tools.WriteLogs(context.Background(), stackARN("parent", "us-east-1"), logPath)

	require.NoError(t, err)
	content := readLog(t, logPath)
	assert.Equal(t, 3, strings.Count(content, blockHeader))
	assert.Equal(t, []string{"us-east-1/parent", "us-east-1/child-a", "us-east-1/child-b"}, f.events.calls)
	assert.NotContains(t, content, "not-a-stack")
}

func TestLogTools_WriteLogs_ParentAndFailedChild(t *testing.T) {
	f := newFixture()
	f.events.events["us-east-1/parent"] = []types.StackEvent{
		rawEvent("parent", types.ResourceStatusCreateComplete, ""),
	}
	f.events.events["us-east-1/parent-child"] = []types.StackEvent{
		rawEvent("parent-child", types.ResourceStatusCreateFailed, "Resource X failed"),
	}
	f.resources.resources["us-east-1/parent"] = []models.Resource{
		nestedStack("Child", "parent-child", "us-east-1"),
	}
	logPath := filepath.Join(t.TempDir(), "parent-us-east-1-cfnlogs.txt")

	err := f.tools.WriteLogs(context.Background(), stackARN("parent", "us-east-1"), logPath)

	require.NoError(t, err)
	content := readLog(t, logPath)
	require.Equal(t, 2, strings.Count(content, blockHeader))

	parentAt := strings.Index(content, "StackName: parent\n")
	childAt := strings.Index(content, "StackName: parent-child\n")
	successAt := strings.Index(content, output.SuccessReason)
	failedAt := strings.Index(content, "ResourceStatusReason:  \nResource X failed\n")

	require.True(t, parentAt >= 0 && childAt >= 0 && successAt >= 0 && failedAt >= 0)
	assert.Less(t, parentAt, successAt)
	assert.Less(t, successAt, childAt)
	assert.Less(t, childAt, failedAt)
}

func TestLogTools_WriteLogs_DepthFirstOrder(t *testing.T) {
	f := newFixture()
	for _, name := range []string{"root", "a", "a1", "b"} {
		f.events.events["us-east-1/"+name] = []types.StackEvent{
			rawEvent(name, types.ResourceStatusCreateComplete, ""),
		}
	}
	f.resources.resources["us-east-1/root"] = []models.Resource{
		nestedStack("A", "a", "us-east-1"),
		nestedStack("B", "b", "us-east-1"),
	}
	f.resources.resources["us-east-1/a"] = []models.Resource{
		nestedStack("A1", "a1", "us-east-1"),
	}
	logPath := filepath.Join(t.TempDir(), "root.txt")

	require.NoError(t, f.tools.WriteLogs(context.Background(), stackARN("root", "us-east-1"), logPath))

	assert.Equal(t, []string{"us-east-1/root", "us-east-1/a", "us-east-1/a1", "us-east-1/b"}, f.events.calls)
}

func TestLogTools_WriteLogs_VisitsEachStackOnce(t *testing.T) {
	f := newFixture()
	for _, name := range []string{"parent", "child"} {
		f.events.events["us-east-1/"+name] = []types.StackEvent{
			rawEvent(name, types.ResourceStatusCreateComplete, ""),
		}
	}
	// Malformed data: the child claims the parent as a nested stack
	f.resources.resources["us-east-1/parent"] = []models.Resource{
		nestedStack("Child", "child", "us-east-1"),
		nestedStack("ChildAgain", "child", "us-east-1"),
	}
	f.resources.resources["us-east-1/child"] = []models.Resource{
		nestedStack("Parent", "parent", "us-east-1"),
	}
	logPath := filepath.Join(t.TempDir(), "parent.txt")

	err := f.tools.WriteLogs(context.Background(), stackARN("parent", "us-east-1"), logPath)

	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(readLog(t, logPath), blockHeader))
	assert.Equal(t, []string{"us-east-1/parent", "us-east-1/child"}, f.events.calls)
	assert.Contains(t, f.logs.String(), "Stack already reported")
}

func TestLogTools_WriteLogs_SkipsNestedStackWithoutPhysicalID(t *testing.T) {
	f := newFixture()
	f.events.events["us-east-1/parent"] = []types.StackEvent{
		rawEvent("parent", types.ResourceStatusCreateInProgress, ""),
	}
	f.resources.resources["us-east-1/parent"] = []models.Resource{
		{LogicalID: "Pending", ResourceType: models.ResourceTypeStack},
	}
	logPath := filepath.Join(t.TempDir(), "parent.txt")

	err := f.tools.WriteLogs(context.Background(), stackARN("parent", "us-east-1"), logPath)

	require.NoError(t, err)
	assert.Equal(t, []string{"us-east-1/parent"}, f.events.calls)
	assert.Contains(t, f.logs.String(), "logical_id=Pending")
}

func TestLogTools_WriteLogs_ResourceListingErrorPropagates(t *testing.T) {
	f := newFixture()
	f.events.events["us-east-1/parent"] = []types.StackEvent{
		rawEvent("parent", types.ResourceStatusCreateComplete, ""),
	}
	f.resources.errs["us-east-1/parent"] = assert.AnError
	logPath := filepath.Join(t.TempDir(), "parent.txt")

	err := f.tools.WriteLogs(context.Background(), stackARN("parent", "us-east-1"), logPath)

	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	var logErr *LogError
	require.True(t, errors.As(err, &logErr))
	assert.Equal(t, "parent", logErr.StackName)
	assert.Equal(t, "list resources", logErr.Operation)

	// The parent block was written before the listing failed
	assert.Equal(t, 1, strings.Count(readLog(t, logPath), blockHeader))
}

func TestLogTools_WriteLogs_ChildErrorAbortsRemainingSiblings(t *testing.T) {
	f := newFixture()
	for _, name := range []string{"parent", "a", "b"} {
		f.events.events["us-east-1/"+name] = []types.StackEvent{
			rawEvent(name, types.ResourceStatusCreateComplete, ""),
		}
	}
	f.resources.resources["us-east-1/parent"] = []models.Resource{
		nestedStack("A", "a", "us-east-1"),
		nestedStack("B", "b", "us-east-1"),
	}
	f.resources.errs["us-east-1/a"] = assert.AnError
	logPath := filepath.Join(t.TempDir(), "parent.txt")

	err := f.tools.WriteLogs(context.Background(), stackARN("parent", "us-east-1"), logPath)

	require.Error(t, err)
	var logErr *LogError
	require.True(t, errors.As(err, &logErr))
	assert.Equal(t, "a", logErr.StackName)
	assert.NotContains(t, f.events.calls, "us-east-1/b")
}

func TestLogTools_WriteLogs_InvalidStackID(t *testing.T) {
	f := newFixture()

	err := f.tools.WriteLogs(context.Background(), "not-an-arn", filepath.Join(t.TempDir(), "x.txt"))

	require.Error(t, err)
	assert.ErrorIs(t, err, stackid.ErrInvalidStackID)
	assert.Empty(t, f.events.calls)
}

func TestLogTools_WriteLogs_UnwritablePath(t *testing.T) {
	f := newFixture()
	f.events.events["us-east-1/parent"] = []types.StackEvent{
		rawEvent("parent", types.ResourceStatusCreateComplete, ""),
	}
	logPath := filepath.Join(t.TempDir(), "missing-dir", "parent.txt")

	err := f.tools.WriteLogs(context.Background(), stackARN("parent", "us-east-1"), logPath)

	require.Error(t, err)
	var logErr *LogError
	require.True(t, errors.As(err, &logErr))
	assert.Equal(t, "write report", logErr.Operation)
	assert.Empty(t, f.resources.calls)
}

func TestLogTools_WriteLogs_AppendsToExistingFile(t *testing.T) {
	f := newFixture()
	f.events.events["us-east-1/parent"] = []types.StackEvent{
		rawEvent("parent", types.ResourceStatusCreateComplete, ""),
	}
	logPath := filepath.Join(t.TempDir(), "parent.txt")
	require.NoError(t, os.WriteFile(logPath, []byte("previous run\n"), 0o644))

	require.NoError(t, f.tools.WriteLogs(context.Background(), stackARN("parent", "us-east-1"), logPath))
	require.NoError(t, f.tools.WriteLogs(context.Background(), stackARN("parent", "us-east-1"), logPath))

	content := readLog(t, logPath)
	assert.True(t, strings.HasPrefix(content, "previous run\n"))
	assert.Equal(t, 2, strings.Count(content, blockHeader), "separate calls should each append a block")
}
