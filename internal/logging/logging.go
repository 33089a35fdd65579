// Package logging builds the hclog loggers used across the tool and the
// category markers that tag PASS and section-header lines.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// NametagKey is the key carrying a line's category marker
const NametagKey = "nametag"

// Nametag marks a log line for downstream console rendering
type Nametag string

const (
	NametagPass   Nametag = "PASS"
	NametagHeader Nametag = "NAMETAG"
)

// Options configures New
type Options struct {
	Level  string
	Output io.Writer
	JSON   bool
	Color  bool
}

// ValidLevel reports whether level is a level name hclog understands
func ValidLevel(level string) bool {
	return hclog.LevelFromString(level) != hclog.NoLevel
}

// New returns a named logger; an empty level means info
func New(name string, opts Options) (hclog.Logger, error) {
	level := opts.Level
	if level == "" {
		level = "info"
	}
	if !ValidLevel(level) {
		return nil, fmt.Errorf("invalid log level %q (supported levels: trace, debug, info, warn, error, off)", opts.Level)
	}

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	color := hclog.ColorOff
	if opts.Color && !opts.JSON {
		color = hclog.AutoColor
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(strings.ToLower(level)),
		Output:     output,
		JSONFormat: opts.JSON,
		Color:      color,
	}), nil
}

// Pass logs msg at info level tagged with the PASS marker
func Pass(logger hclog.Logger, msg string, args ...interface{}) {
	logger.Info(msg, tagged(NametagPass, args)...)
}

// Header logs a section header at warn level tagged with the NAMETAG marker
func Header(logger hclog.Logger, msg string, args ...interface{}) {
	logger.Warn(msg, tagged(NametagHeader, args)...)
}

func tagged(tag Nametag, args []interface{}) []interface{} {
	return append([]interface{}{NametagKey, string(tag)}, args...)
}
