package loudness

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNoStructuredBlock reports diagnostic text without a brace-delimited block.
var ErrNoStructuredBlock = errors.New("no structured block found in diagnostic text")

// MalformedBlockError reports a structured block that could not be decoded
// into a Report.
type MalformedBlockError struct {
	Detail string
	Err    error
}

func (e *MalformedBlockError) Error() string {
	return "malformed loudness block: " + e.Detail
}

func (e *MalformedBlockError) Unwrap() error {
	return e.Err
}

type numericField struct {
	key string
	dst func(*Report) *float64
}

var numericFields = []numericField{
	{"input_i", func(r *Report) *float64 { return &r.InputIntegrated }},
	{"input_tp", func(r *Report) *float64 { return &r.InputTruePeak }},
	{"input_lra", func(r *Report) *float64 { return &r.InputRange }},
	{"input_thresh", func(r *Report) *float64 { return &r.InputThreshold }},
	{"output_i", func(r *Report) *float64 { return &r.OutputIntegrated }},
	{"output_tp", func(r *Report) *float64 { return &r.OutputTruePeak }},
	{"output_lra", func(r *Report) *float64 { return &r.OutputRange }},
	{"output_thresh", func(r *Report) *float64 { return &r.OutputThreshold }},
	{"target_offset", func(r *Report) *float64 { return &r.TargetOffset }},
}

const fieldNormalizationType = "normalization_type"

// Parse extracts the first structured block from raw and decodes it into a
// Report. Every numeric field must be a quoted, finite decimal.
func Parse(raw string) (Report, error) {
	block, ok := ExtractBlock(raw)
	if !ok {
		return Report{}, ErrNoStructuredBlock
	}
	return decodeBlock(block)
}

// ExtractBlock returns the first balanced {...} block in raw. Scanning starts
// at the first '{' and stops at the brace that closes it; braces inside JSON
// string literals are ignored.
func ExtractBlock(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

func decodeBlock(block string) (Report, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(block), &fields); err != nil {
		return Report{}, &MalformedBlockError{Detail: "invalid JSON object", Err: err}
	}

	var report Report
	for _, field := range numericFields {
		value, err := stringField(fields, field.key)
		if err != nil {
			return Report{}, err
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return Report{}, &MalformedBlockError{Detail: fmt.Sprintf("field %q: %q is not a decimal number", field.key, value), Err: err}
		}
		if math.IsInf(parsed, 0) || math.IsNaN(parsed) {
			return Report{}, &MalformedBlockError{Detail: fmt.Sprintf("field %q: %q is not finite", field.key, value)}
		}
		*field.dst(&report) = parsed
	}

	normType, err := stringField(fields, fieldNormalizationType)
	if err != nil {
		return Report{}, err
	}
	report.NormalizationType = strings.TrimSpace(normType)
	return report, nil
}

func stringField(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", &MalformedBlockError{Detail: fmt.Sprintf("missing field %q", key)}
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", &MalformedBlockError{Detail: fmt.Sprintf("field %q: expected string, got %s", key, strings.TrimSpace(string(raw))), Err: err}
	}
	return value, nil
}
