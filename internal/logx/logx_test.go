package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/basuapi/adaptergen/internal/log"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf))

	logger.Info("handler written", "path", "src/a/index.js")

	output := buf.String()
	if !strings.Contains(output, "level=INFO") {
		t.Errorf("expected level=INFO, got: %s", output)
	}
	if !strings.Contains(output, `msg="handler written"`) {
		t.Errorf("expected msg in output, got: %s", output)
	}
	if !strings.Contains(output, `path="src/a/index.js"`) {
		t.Errorf("expected quoted path in output, got: %s", output)
	}
	if strings.Contains(output, "time=") {
		t.Errorf("timestamp should be disabled by default, got: %s", output)
	}
}

func TestFieldSorting(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf))

	logger.Info("test", "zebra", "z", "alpha", "a", "beta", "b")

	output := buf.String()
	alphaPos := strings.Index(output, `alpha="a"`)
	betaPos := strings.Index(output, `beta="b"`)
	zebraPos := strings.Index(output, `zebra="z"`)

	if alphaPos == -1 || betaPos == -1 || zebraPos == -1 {
		t.Fatalf("missing fields in output: %s", output)
	}
	if alphaPos > betaPos || betaPos > zebraPos {
		t.Errorf("fields not sorted: %s", output)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf), WithLevel(slog.LevelWarn))

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("messages below WARN should be dropped: %s", output)
	}
	if !strings.Contains(output, "level=WARN") {
		t.Errorf("expected WARN line: %s", output)
	}
}

func TestErrorField(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf))

	logger.Error(errors.New("disk full"), "write failed")

	if !strings.Contains(buf.String(), `error="disk full"`) {
		t.Errorf("expected error field, got: %s", buf.String())
	}
}

func TestWithAndHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf)).With("group", "_users_list")

	logger.Info("rendered", log.Int("methods", 2), log.Str("language", "typescript"))

	output := buf.String()
	for _, want := range []string{`group="_users_list"`, "methods=2", `language="typescript"`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestColorization(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf), WithColor(true))

	logger.Info("test")

	if !strings.Contains(buf.String(), "\033[") {
		t.Errorf("expected ANSI color codes in output, got: %s", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf), WithFormat(FormatJSON))

	logger.Warn("file exists, skipping", "path", "src/a/index.ts")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, buf.String())
	}
	if line["msg"] != "file exists, skipping" {
		t.Errorf("unexpected msg: %v", line["msg"])
	}
	if line["path"] != "src/a/index.ts" {
		t.Errorf("unexpected path: %v", line["path"])
	}
	if _, ok := line["time"]; ok {
		t.Errorf("time should be dropped when timestamps are disabled")
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("json") != FormatJSON {
		t.Error("expected json")
	}
	if ParseFormat("anything") != FormatLogfmt {
		t.Error("expected logfmt fallback")
	}
}
