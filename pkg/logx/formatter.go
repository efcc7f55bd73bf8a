package logx

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Formatter renders an entry into one log line.
type Formatter interface {
	Format(e Entry) []byte
}

// ConsoleFormatter renders human-readable lines for development.
type ConsoleFormatter struct{}

func (f *ConsoleFormatter) Format(e Entry) []byte {
	var b strings.Builder
	b.WriteString(e.Time.Format("2006-01-02 15:04:05.000"))
	b.WriteString(" | ")
	b.WriteString(fmt.Sprintf("%-5s", e.Level.String()))
	b.WriteString(" | ")
	b.WriteString(e.Message)

	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf(" %s=%v", k, e.Fields[k]))
		}
	}
	if e.Err != nil {
		b.WriteString(" error=")
		b.WriteString(e.Err.Error())
	}
	return []byte(b.String())
}

// JSONFormatter renders one JSON object per line for log shippers.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(e Entry) []byte {
	payload := map[string]any{
		"timestamp": e.Time.Format("2006-01-02T15:04:05.000Z07:00"),
		"level":     e.Level.String(),
		"message":   e.Message,
	}
	for k, v := range e.Fields {
		payload[k] = v
	}
	if e.Err != nil {
		payload["error"] = e.Err.Error()
	}
	line, err := json.Marshal(payload)
	if err != nil {
		return []byte(fmt.Sprintf(`{"level":"ERROR","message":"logx: marshal failure: %v"}`, err))
	}
	return line
}
