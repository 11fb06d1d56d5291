package loudness

import (
	"errors"
	"strings"
	"testing"
)

const sampleDiagnostics = `Input #0, mp3, from 'song.mp3':
  Duration: 00:03:12.04, start: 0.025057, bitrate: 320 kb/s
  Stream #0:0: Audio: mp3, 44100 Hz, stereo, fltp, 320 kb/s
size=N/A time=00:03:12.01 bitrate=N/A speed= 143x
[Parsed_loudnorm_0 @ 0x55d0c8a3b1c0]
{
	"input_i" : "-9.87",
	"input_tp" : "0.42",
	"input_lra" : "5.10",
	"input_thresh" : "-20.01",
	"output_i" : "-17.62",
	"output_tp" : "-1.50",
	"output_lra" : "4.70",
	"output_thresh" : "-27.73",
	"normalization_type" : "dynamic",
	"target_offset" : "-0.38"
}
[out#0/null @ 0x55d0c8a2f600] video:0KiB audio:33076KiB
`

func TestParseDecodesAllFields(t *testing.T) {
	report, err := Parse(sampleDiagnostics)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := Report{
		InputIntegrated:   -9.87,
		InputTruePeak:     0.42,
		InputRange:        5.10,
		InputThreshold:    -20.01,
		OutputIntegrated:  -17.62,
		OutputTruePeak:    -1.50,
		OutputRange:       4.70,
		OutputThreshold:   -27.73,
		NormalizationType: "dynamic",
		TargetOffset:      -0.38,
	}
	if report != want {
		t.Fatalf("unexpected report:\n got %+v\nwant %+v", report, want)
	}

	measured := report.Measured()
	if measured.Integrated != -9.87 || measured.TruePeak != 0.42 || measured.Range != 5.10 || measured.Threshold != -20.01 {
		t.Fatalf("unexpected measurement: %+v", measured)
	}
}

func TestParseWithoutBlock(t *testing.T) {
	for _, raw := range []string{"", "ffmpeg: no such file\n", "size=N/A time=00:00:01.00 }"} {
		if _, err := Parse(raw); !errors.Is(err, ErrNoStructuredBlock) {
			t.Fatalf("Parse(%q) error = %v, want ErrNoStructuredBlock", raw, err)
		}
	}
}

func TestParseUnterminatedBlock(t *testing.T) {
	raw := `progress { "input_i" : "-9.0"`
	if _, err := Parse(raw); !errors.Is(err, ErrNoStructuredBlock) {
		t.Fatalf("expected ErrNoStructuredBlock, got %v", err)
	}
}

func TestParseMalformedBlocks(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		contain string
	}{
		{
			name:    "missing field",
			mutate:  func(s string) string { return strings.Replace(s, `"input_tp" : "0.42",`, "", 1) },
			contain: `missing field "input_tp"`,
		},
		{
			name:    "non numeric",
			mutate:  func(s string) string { return strings.Replace(s, `"-9.87"`, `"loud"`, 1) },
			contain: `"input_i"`,
		},
		{
			name:    "non finite",
			mutate:  func(s string) string { return strings.Replace(s, `"-9.87"`, `"-inf"`, 1) },
			contain: "not finite",
		},
		{
			name:    "wrong type",
			mutate:  func(s string) string { return strings.Replace(s, `"-9.87"`, `-9.87`, 1) },
			contain: "expected string",
		},
		{
			name:    "normalization type not a string",
			mutate:  func(s string) string { return strings.Replace(s, `"dynamic"`, `7`, 1) },
			contain: `"normalization_type"`,
		},
		{
			name:    "invalid json",
			mutate:  func(s string) string { return strings.Replace(s, `"input_i" :`, `input_i :`, 1) },
			contain: "invalid JSON",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.mutate(sampleDiagnostics))
			var malformed *MalformedBlockError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedBlockError, got %v", err)
			}
			if !strings.Contains(malformed.Error(), tc.contain) {
				t.Fatalf("expected error to mention %q, got %q", tc.contain, malformed.Error())
			}
		})
	}
}

func TestExtractBlockTakesFirstBalancedBlock(t *testing.T) {
	raw := `noise {"a": {"b": "}"}} tail {"second": "1"}`
	block, ok := ExtractBlock(raw)
	if !ok {
		t.Fatal("expected a block")
	}
	if block != `{"a": {"b": "}"}}` {
		t.Fatalf("unexpected block %q", block)
	}
}

func TestExtractBlockHandlesEscapedQuotes(t *testing.T) {
	raw := `x {"k": "a \"}\" b"} y`
	block, ok := ExtractBlock(raw)
	if !ok {
		t.Fatal("expected a block")
	}
	if block != `{"k": "a \"}\" b"}` {
		t.Fatalf("unexpected block %q", block)
	}
}

func TestReportSummary(t *testing.T) {
	report, err := Parse(sampleDiagnostics)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	got := report.Summary()
	if !strings.Contains(got, "I=-9.87 LKFS") || !strings.Contains(got, "(dynamic)") {
		t.Fatalf("unexpected summary %q", got)
	}
}
