package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = 0x42
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// LoudnormOutput renders ffmpeg analysis diagnostics reporting inputI as the
// integrated loudness.
func LoudnormOutput(inputI string) string {
	return `[Parsed_loudnorm_0 @ 0x5581f2c1b2c0]
{
	"input_i" : "` + inputI + `",
	"input_tp" : "-0.20",
	"input_lra" : "6.30",
	"input_thresh" : "-21.40",
	"output_i" : "-18.10",
	"output_tp" : "-1.50",
	"output_lra" : "5.90",
	"output_thresh" : "-28.60",
	"normalization_type" : "dynamic",
	"target_offset" : "0.10"
}
`
}
