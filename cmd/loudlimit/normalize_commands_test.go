package main

import (
	"os"
	"path/filepath"
	"testing"

	"loudlimit/internal/normalize"
	"loudlimit/internal/testsupport"
)

func TestFileCommandNormalizesLoudAsset(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedFFmpeg(testsupport.LoudnormOutput("-9.00"), 0))
	asset := env.asset(t, "song.mp3")

	out, stderr, err := runCLI(t, []string{"file", asset, "--trace"}, env.configPath)
	if err != nil {
		t.Fatalf("file command: %v\nstderr: %s", err, stderr)
	}
	requireContains(t, out, "Normalized (I=-9.00 LKFS, Dynamic)")
	requireContains(t, out, "original kept at "+filepath.Join(env.musicDir, "original-song.mp3"))
	requireContains(t, out, "running analysis:")
	requireContains(t, stderr, "asset normalized")

	if _, err := os.Stat(filepath.Join(env.musicDir, "original-song.mp3")); err != nil {
		t.Fatalf("expected staged original: %v", err)
	}
	if _, err := os.Stat(asset); err != nil {
		t.Fatalf("expected corrected output at canonical path: %v", err)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history command: %v", err)
	}
	requireContains(t, out, asset)
}

func TestFileCommandLeavesQuietAssetWithTargetFlag(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedFFmpeg(testsupport.LoudnormOutput("-9.00"), 0))
	asset := env.asset(t, "song.mp3")

	out, _, err := runCLI(t, []string{"file", asset, "--target=-5"}, env.configPath)
	if err != nil {
		t.Fatalf("file command: %v", err)
	}
	requireContains(t, out, "Unchanged")
	if _, err := os.Stat(filepath.Join(env.musicDir, "original-song.mp3")); !os.IsNotExist(err) {
		t.Fatal("unchanged asset should not be staged")
	}
}

func TestFileCommandRejectsInvalidTarget(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedFFmpeg(testsupport.LoudnormOutput("-9.00"), 0))
	asset := env.asset(t, "song.mp3")

	if _, _, err := runCLI(t, []string{"file", asset, "--target", "5"}, env.configPath); err == nil {
		t.Fatal("expected error for target above 0 LKFS")
	}
}

func TestFileCommandMissingAssetExitCode(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedFFmpeg(testsupport.LoudnormOutput("-9.00"), 0))

	_, _, err := runCLI(t, []string{"file", filepath.Join(env.musicDir, "missing.mp3")}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing asset")
	}
	if got := exitCode(err); got != normalize.ExitNotFound {
		t.Fatalf("expected exit code %d, got %d (%v)", normalize.ExitNotFound, got, err)
	}
}

func TestFileCommandRequiresFFmpeg(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.FFmpeg.Binary = filepath.Join(env.musicDir, "no-ffmpeg")
	writeTestConfig(t, env.configPath, env.cfg)
	asset := env.asset(t, "song.mp3")

	_, _, err := runCLI(t, []string{"file", asset}, env.configPath)
	if err == nil {
		t.Fatal("expected preflight failure")
	}
	requireContains(t, err.Error(), "no-ffmpeg")
}

func TestDirCommandRendersSummary(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedFFmpeg(testsupport.LoudnormOutput("-20.00"), 0))
	env.asset(t, "a.mp3")
	env.asset(t, "b.mp3")
	env.asset(t, "cover.jpg")

	out, _, err := runCLI(t, []string{"dir", env.musicDir, "--workers", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("dir command: %v", err)
	}
	requireContains(t, out, "a.mp3")
	requireContains(t, out, "b.mp3")
	requireContains(t, out, "below target")
	requireContains(t, out, "2 processed (0 normalized, 2 unchanged), 0 failed")
}

func TestDirCommandReportsFailures(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedFFmpeg("Invalid data found when processing input\n", 1))
	env.asset(t, "a.mp3")

	out, _, err := runCLI(t, []string{"dir", env.musicDir}, env.configPath)
	if err == nil {
		t.Fatal("expected failure when an asset fails")
	}
	if exitCode(err) != 2 {
		t.Fatalf("expected exit code 2, got %d", exitCode(err))
	}
	requireContains(t, out, "analysis_unreadable")
	requireContains(t, out, "0 processed (0 normalized, 0 unchanged), 1 failed")
}

func TestDirCommandNotADirectory(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedFFmpeg(testsupport.LoudnormOutput("-20.00"), 0))
	asset := env.asset(t, "a.mp3")

	_, _, err := runCLI(t, []string{"dir", asset}, env.configPath)
	if exitCode(err) != normalize.ExitNotFileOrDir {
		t.Fatalf("expected exit code %d, got %d (%v)", normalize.ExitNotFileOrDir, exitCode(err), err)
	}
}
