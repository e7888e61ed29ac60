package internal

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestSetLogLevel(t *testing.T) {
	originalLevel := logLevel
	defer func() { logLevel = originalLevel }()

	SetLogLevel(LogLevelDebug)
	if logLevel != LogLevelDebug {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelDebug", logLevel)
	}

	SetLogLevel(LogLevelError)
	if logLevel != LogLevelError {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelError", logLevel)
	}
}

func TestSetVerbose(t *testing.T) {
	originalLevel := logLevel
	defer func() { logLevel = originalLevel }()

	SetVerbose(true)
	if logLevel != LogLevelDebug {
		t.Errorf("SetVerbose(true) logLevel = %v, want LogLevelDebug", logLevel)
	}

	SetVerbose(false)
	if logLevel != LogLevelWarn {
		t.Errorf("SetVerbose(false) logLevel = %v, want LogLevelWarn", logLevel)
	}
}

func TestLogFunctions_Filtering(t *testing.T) {
	originalLevel := logLevel
	defer func() { logLevel = originalLevel }()

	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stderr)

	SetLogLevel(LogLevelWarn)
	LogError("first %d", 1)
	LogWarn("second %d", 2)
	LogInfo("third %d", 3)
	LogDebug("fourth %d", 4)

	output := buf.String()
	for _, want := range []string{"[ERROR] first 1", "[WARN] second 2"} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q, got: %q", want, output)
		}
	}
	for _, unwanted := range []string{"third", "fourth"} {
		if strings.Contains(output, unwanted) {
			t.Errorf("output should not contain %q at warn level, got: %q", unwanted, output)
		}
	}

	buf.Reset()
	SetVerbose(true)
	LogDebug("fifth")
	if !strings.Contains(buf.String(), "[DEBUG] fifth") {
		t.Errorf("debug message missing in verbose mode, got: %q", buf.String())
	}
}

func TestLogLevels(t *testing.T) {
	if LogLevelError >= LogLevelWarn {
		t.Error("LogLevelError should be less than LogLevelWarn")
	}
	if LogLevelWarn >= LogLevelInfo {
		t.Error("LogLevelWarn should be less than LogLevelInfo")
	}
	if LogLevelInfo >= LogLevelDebug {
		t.Error("LogLevelInfo should be less than LogLevelDebug")
	}
	if got := LogLevel(42).String(); got != "UNKNOWN" {
		t.Errorf("LogLevel(42).String() = %q, want UNKNOWN", got)
	}
}
