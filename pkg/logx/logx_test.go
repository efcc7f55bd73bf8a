package logx

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestFieldLoggerChaining(t *testing.T) {
	err := errors.New("boom")

	fl := WithError(err).
		WithFields(Fields{"channel": "email", "attempt": 1}).
		WithField("attempt", 2)

	if fl.err != err {
		t.Fatalf("err = %v", fl.err)
	}
	if fl.fields["channel"] != "email" {
		t.Fatalf("fields = %+v", fl.fields)
	}
	if fl.fields["attempt"] != 2 {
		t.Fatalf("later WithField did not win: %+v", fl.fields)
	}
}

func TestWithFieldsStartsFromErrorOnlyEntry(t *testing.T) {
	// An entry started with WithError has no field map yet; merging into it
	// must not panic and must keep the error.
	fl := WithError(errors.New("boom")).WithFields(Fields{"k": "v"})
	if fl.fields["k"] != "v" {
		t.Fatalf("fields = %+v", fl.fields)
	}
	if fl.err == nil {
		t.Fatal("error dropped by WithFields")
	}
}

func TestConsoleFormatterRendersFieldsAndError(t *testing.T) {
	f := &ConsoleFormatter{}
	line := string(f.Format(Entry{
		Time:    time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
		Level:   LevelWarn,
		Message: "delivery failed",
		Fields:  Fields{"channel": "email"},
		Err:     errors.New("smtp down"),
	}))

	for _, want := range []string{"WARN", "delivery failed", "channel=email", "error=smtp down"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != LevelDebug {
		t.Fatal("debug")
	}
	if ParseLevel("WARNING") != LevelWarn {
		t.Fatal("warning alias")
	}
	if ParseLevel("") != LevelInfo {
		t.Fatal("default is info")
	}
}
