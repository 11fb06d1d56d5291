package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"loudlimit/internal/loudness"
	"loudlimit/internal/services"
)

var commandContext = exec.CommandContext

const (
	defaultBinary     = "ffmpeg"
	defaultCodec      = "libmp3lame"
	defaultSampleRate = 44100
	defaultChannels   = 2
)

// Result records one ffmpeg invocation.
type Result struct {
	ExitCode    int
	Diagnostics string
	Command     string
}

// Success reports whether the process exited zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// NormalizeRequest describes a correction pass from a staged input to the
// canonical output path.
type NormalizeRequest struct {
	Input      string
	Output     string
	TargetLKFS float64
	Measured   loudness.Measurement
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary = strings.TrimSpace(binary); binary != "" {
			c.binary = binary
		}
	}
}

// WithEncoder overrides the output codec settings of the correction pass.
// Zero values keep the defaults.
func WithEncoder(codec string, sampleRate, channels int) Option {
	return func(c *CLI) {
		if codec = strings.TrimSpace(codec); codec != "" {
			c.codec = codec
		}
		if sampleRate > 0 {
			c.sampleRate = sampleRate
		}
		if channels > 0 {
			c.channels = channels
		}
	}
}

// CLI runs loudnorm passes through the ffmpeg executable.
type CLI struct {
	binary     string
	codec      string
	sampleRate int
	channels   int
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{
		binary:     defaultBinary,
		codec:      defaultCodec,
		sampleRate: defaultSampleRate,
		channels:   defaultChannels,
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Binary returns the command the client launches.
func (c *CLI) Binary() string {
	return c.binary
}

// Analyze runs the measurement pass against assetPath.
func (c *CLI) Analyze(ctx context.Context, assetPath string) (Result, error) {
	if strings.TrimSpace(assetPath) == "" {
		return Result{}, errors.New("asset path required")
	}
	return c.run(ctx, "analyze", c.analyzeArgs(assetPath))
}

// Normalize runs the linear correction pass described by req.
func (c *CLI) Normalize(ctx context.Context, req NormalizeRequest) (Result, error) {
	if strings.TrimSpace(req.Input) == "" {
		return Result{}, errors.New("input path required")
	}
	if strings.TrimSpace(req.Output) == "" {
		return Result{}, errors.New("output path required")
	}
	return c.run(ctx, "normalize", c.normalizeArgs(req))
}

func (c *CLI) analyzeArgs(assetPath string) []string {
	filter := fmt.Sprintf("loudnorm=I=%s:TP=%s:LRA=%s:print_format=json",
		formatParam(loudness.AnalysisTargetLKFS),
		formatParam(loudness.TruePeakCeiling),
		formatParam(loudness.LoudnessRangeTarget),
	)
	return []string{
		"-hide_banner", "-nostdin",
		"-i", assetPath,
		"-af", filter,
		"-f", "null", "-",
	}
}

func (c *CLI) normalizeArgs(req NormalizeRequest) []string {
	filter := fmt.Sprintf(
		"loudnorm=I=%s:TP=%s:LRA=%s:measured_I=%s:measured_TP=%s:measured_LRA=%s:measured_thresh=%s:offset=0:linear=true",
		formatParam(req.TargetLKFS),
		formatParam(loudness.TruePeakCeiling),
		formatParam(loudness.LoudnessRangeTarget),
		formatParam(req.Measured.Integrated),
		formatParam(req.Measured.TruePeak),
		formatParam(req.Measured.Range),
		formatParam(req.Measured.Threshold),
	)
	return []string{
		"-hide_banner", "-nostdin",
		"-y",
		"-i", req.Input,
		"-af", filter,
		"-vn",
		"-acodec", c.codec,
		"-ar", strconv.Itoa(c.sampleRate),
		"-ac", strconv.Itoa(c.channels),
		req.Output,
	}
}

func (c *CLI) run(ctx context.Context, op string, args []string) (Result, error) {
	result := Result{Command: RenderCommand(c.binary, args)}

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var output bytes.Buffer
	// loudnorm prints its report on stderr; stdout is folded in so nothing
	// the tool says is lost from the trace.
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	result.Diagnostics = output.String()
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return result, services.Wrap(services.ErrExternalTool, "ffmpeg", op, "launch "+c.binary, err)
}

// RenderCommand formats argv for traces, quoting arguments containing spaces.
func RenderCommand(binary string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, arg := range append([]string{binary}, args...) {
		if arg == "" || strings.ContainsAny(arg, " \t\"'") {
			parts = append(parts, strconv.Quote(arg))
			continue
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

func formatParam(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
