package log

import (
	"bytes"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T, name string) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf)
	return ForComponent(name), buf
}

func TestPrefixInfo(t *testing.T) {
	SetGlobalDebug(false)

	const name = "prefix_component_test"
	l, buf := newTestLogger(t, name)

	l.Infof("hello world")
	out := buf.String()

	if !strings.Contains(out, "["+name+">]") {
		t.Fatalf("expected prefix [%s>] in output, got: %q", name, out)
	}
	if !strings.Contains(out, "hello world") {
		t.Fatalf("expected message in output, got: %q", out)
	}
}

func TestDebugPerComponent(t *testing.T) {
	SetGlobalDebug(false)

	const name = "debug_component_specific"
	DisableDebugFor(name)
	l, buf := newTestLogger(t, name)

	l.Debugf("should not appear")
	if strings.Contains(buf.String(), "should not appear") {
		t.Fatalf("debug message appeared while debug disabled")
	}

	EnableDebugFor(name)
	l.Debugf("visible now")
	if !strings.Contains(buf.String(), "visible now") {
		t.Fatalf("expected debug message after enabling per-component debug; got: %q", buf.String())
	}
}

func TestDebugGlobal(t *testing.T) {
	SetGlobalDebug(false)

	const name = "debug_component_global"
	DisableDebugFor(name)
	l, buf := newTestLogger(t, name)

	l.Debugf("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("debug message appeared while debug disabled")
	}

	SetGlobalDebug(true)
	defer SetGlobalDebug(false)

	l.Debugf("global visible")
	if !strings.Contains(buf.String(), "global visible") {
		t.Fatalf("expected debug message with global debug on; got: %q", buf.String())
	}
}

func TestWarnAndErrorLevels(t *testing.T) {
	l, buf := newTestLogger(t, "levels_component")

	l.Warnf("watch out")
	l.Errorf("it broke")

	out := buf.String()
	if !strings.Contains(out, LevelWarn+" [levels_component>] watch out") {
		t.Fatalf("expected warn line, got: %q", out)
	}
	if !strings.Contains(out, LevelError+" [levels_component>] it broke") {
		t.Fatalf("expected error line, got: %q", out)
	}
}
