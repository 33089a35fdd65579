package models

import "time"

// StackEvent is the reporting shape of a single stack event.
// Field order matches the column order of the rendered event table.
type StackEvent struct {
	TimeStamp            time.Time `json:"TimeStamp"`
	ResourceStatus       string    `json:"ResourceStatus"`
	ResourceType         string    `json:"ResourceType"`
	LogicalResourceID    string    `json:"LogicalResourceId"`
	ResourceStatusReason string    `json:"ResourceStatusReason"`
}

// EventColumns are the table headers for StackEvent, in field order
var EventColumns = []string{
	"TimeStamp",
	"ResourceStatus",
	"ResourceType",
	"LogicalResourceId",
	"ResourceStatusReason",
}

// Row returns the event's values as strings, in EventColumns order
func (e StackEvent) Row() []string {
	ts := ""
	if !e.TimeStamp.IsZero() {
		ts = e.TimeStamp.Format(TimestampLayout)
	}
	return []string{
		ts,
		e.ResourceStatus,
		e.ResourceType,
		e.LogicalResourceID,
		e.ResourceStatusReason,
	}
}

// TimestampLayout is the layout used for event timestamps in reports
const TimestampLayout = "2006-01-02 15:04:05.000000-07:00"
