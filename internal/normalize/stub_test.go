package normalize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"loudlimit/internal/ffmpeg"
)

// loudnormOutput renders analysis diagnostics the way ffmpeg prints them.
func loudnormOutput(inputI string) string {
	return fmt.Sprintf(`size=N/A time=00:00:05.00 bitrate=N/A speed= 120x
[Parsed_loudnorm_0 @ 0x5581f2c1b2c0]
{
	"input_i" : "%s",
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
`, inputI)
}

type stubTool struct {
	mu sync.Mutex

	// diagnostics maps an asset base name to its analysis output.
	diagnostics map[string]string
	analyzeErr  error
	encodeExit  int
	encodeErr   error
	// writePartial makes a failing encode leave bytes at the output path.
	writePartial bool
	onAnalyze    func(path string)

	analyzed   []string
	normalized []ffmpeg.NormalizeRequest
}

func (s *stubTool) Analyze(_ context.Context, path string) (ffmpeg.Result, error) {
	s.mu.Lock()
	s.analyzed = append(s.analyzed, path)
	hook := s.onAnalyze
	s.mu.Unlock()
	if hook != nil {
		hook(path)
	}

	result := ffmpeg.Result{Command: ffmpeg.RenderCommand("ffmpeg", []string{"-i", path, "-af", "loudnorm", "-f", "null", "-"})}
	if s.analyzeErr != nil {
		return result, s.analyzeErr
	}
	diag, ok := s.diagnostics[filepath.Base(path)]
	if !ok {
		result.ExitCode = 1
		result.Diagnostics = path + ": Invalid data found when processing input\n"
		return result, nil
	}
	result.Diagnostics = diag
	return result, nil
}

func (s *stubTool) Normalize(_ context.Context, req ffmpeg.NormalizeRequest) (ffmpeg.Result, error) {
	s.mu.Lock()
	s.normalized = append(s.normalized, req)
	s.mu.Unlock()

	result := ffmpeg.Result{Command: ffmpeg.RenderCommand("ffmpeg", []string{"-y", "-i", req.Input, req.Output})}
	if s.encodeErr != nil {
		return result, s.encodeErr
	}
	if s.encodeExit != 0 {
		if s.writePartial {
			_ = os.WriteFile(req.Output, []byte("partial"), 0o644)
		}
		result.ExitCode = s.encodeExit
		result.Diagnostics = "Error while encoding\nConversion failed!\n"
		return result, nil
	}
	data, err := os.ReadFile(req.Input)
	if err != nil {
		result.ExitCode = 1
		result.Diagnostics = err.Error()
		return result, nil
	}
	if err := os.WriteFile(req.Output, append([]byte("normalized:"), data...), 0o644); err != nil {
		result.ExitCode = 1
		result.Diagnostics = err.Error()
	}
	return result, nil
}

func (s *stubTool) analyzedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.analyzed)
}

func writeAsset(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func assertMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be absent, stat err=%v", path, err)
	}
}
