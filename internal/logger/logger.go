package logger

import (
	"fmt"
	"strings"
)

// ANSI color codes. Plain stdout; terminals that don't support color will
// show the escape bytes, which is acceptable for a research tool.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

// Info logs an informational message with a component tag.
func Info(tag, msg string) {
	fmt.Printf("%s[%s]%s %s\n", cyan, tag, reset, msg)
}

// Success logs a completed-step message.
func Success(tag, msg string) {
	fmt.Printf("%s[%s]%s %s\n", green, tag, reset, msg)
}

// Warn logs a non-fatal problem.
func Warn(tag, msg string) {
	fmt.Printf("%s[%s]%s %s\n", yellow, tag, reset, msg)
}

// Error logs a fatal problem. The caller decides whether to exit.
func Error(tag, msg string) {
	fmt.Printf("%s[%s]%s %s\n", red, tag, reset, msg)
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Printf("%s%sstreetnet%s %s%s%s\n", bold, cyan, reset, dim, version, reset)
}

// Section prints a titled divider to group related log output.
func Section(title string) {
	fmt.Printf("\n%s── %s %s%s\n", bold, title, strings.Repeat("─", max(2, 40-len(title))), reset)
}

// Stats prints an aligned key/value line, used for load and run summaries.
func Stats(key string, value any) {
	fmt.Printf("  %-18s %v\n", key+":", value)
}
