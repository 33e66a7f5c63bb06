// Package extract turns free-form user text into the structured fields a
// task operation needs, using the language model and then distrusting it.
package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/hrygo/taskgpt/ai/core/llm"
	"github.com/hrygo/taskgpt/ai/internal/dateutil"
	"github.com/hrygo/taskgpt/ai/internal/strutil"
)

// Record maps every field of a schema to its value. A nil value means the
// field is absent.
type Record map[string]*string

// Get returns the value of field and whether it is present.
func (r Record) Get(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// Has reports whether field has a value.
func (r Record) Has(field string) bool {
	_, ok := r.Get(field)
	return ok
}

// Int32 parses field as a task id such as "12" or "#12".
func (r Record) Int32(field string) (int32, bool) {
	v, ok := r.Get(field)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(v, "#"), 10, 32)
	if err != nil || n <= 0 {
		return 0, false
	}
	return int32(n), true
}

// Extractor fills schema records from utterances.
type Extractor struct {
	llm llm.Completer
}

// NewExtractor creates an extractor. A nil model yields all-absent records.
func NewExtractor(completer llm.Completer) *Extractor {
	return &Extractor{llm: completer}
}

// Extract returns a record holding every field of schema. Model failures and
// unreadable replies leave all fields absent.
func (e *Extractor) Extract(ctx context.Context, utterance string, schema Schema, today time.Time) Record {
	record := emptyRecord(schema)
	if e.llm == nil || strings.TrimSpace(utterance) == "" {
		return record
	}

	reply, err := e.llm.Complete(ctx, buildPrompt(schema, utterance, today))
	if err != nil {
		slog.Warn("extraction model call failed", "schema", schema.Name, "error", err)
		return record
	}

	obj := strutil.JSONObject(reply)
	var raw map[string]any
	if obj == "" || json.Unmarshal([]byte(obj), &raw) != nil {
		slog.Debug("extraction reply is not a JSON object",
			"schema", schema.Name,
			"reply", strutil.Truncate(reply, 120))
		return record
	}

	for _, f := range schema.Fields {
		v, ok := scalar(raw[f.Name])
		if !ok || isNone(v) || schema.isVague(v) {
			continue
		}
		if f.Date {
			if d, ok := dateutil.Normalize(v, today); ok {
				v = d
			}
		}
		record[f.Name] = &v
	}
	return record
}

func emptyRecord(schema Schema) Record {
	record := make(Record, len(schema.Fields))
	for _, f := range schema.Fields {
		record[f.Name] = nil
	}
	return record
}

// scalar renders a JSON value as trimmed text. Objects and arrays are not values.
func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		return s, s != ""
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10), true
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	default:
		return "", false
	}
}

func isNone(v string) bool {
	switch strings.ToLower(strings.Trim(v, " .")) {
	case "", "none", "null", "nil", "n/a", "na", "no date", "not mentioned":
		return true
	}
	return false
}

func (s Schema) isVague(v string) bool {
	folded := strings.Trim(strutil.FoldTitle(v), " .!?")
	for _, p := range s.vague {
		if folded == p {
			return true
		}
	}
	return false
}
