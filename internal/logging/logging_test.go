package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestSetup_JSONCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	entry, err := Setup("debug", "json", &buf)
	if err != nil {
		t.Fatal(err)
	}

	ctx := WithEntry(context.Background(), entry.WithFields(Fields{"trace_id": "abc"}))
	FromContext(ctx).Info("handled")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, buf.String())
	}
	if line["trace_id"] != "abc" || line["msg"] != "handled" || line["app"] != "gorbushka-bot" {
		t.Errorf("unexpected log line: %v", line)
	}
}

func TestSetup_RejectsBadInput(t *testing.T) {
	if _, err := Setup("loud", "text", nil); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := Setup("info", "xml", nil); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestFromContext_FallsBackToBase(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected base logger")
	}
}
