package ffmpegx

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeTools makes every ffmpeg/ffprobe invocation re-exec the test binary,
// which then plays the tool in TestHelperProcess.
//
// Behaviour is driven by env:
//
//	FAKE_DURATIONS   JSON object, file base name -> duration string,
//	                 "fail" (ffprobe exits 1) or "garbage" (unparsable report)
//	FAKE_FFMPEG_EXIT non-zero makes ffmpeg fail with that code
//	FAKE_FFMPEG_LOG  file that receives the ffmpeg argv as JSON
func fakeTools(t *testing.T) Toolchain {
	t.Helper()
	exe, err := os.Executable()
	require.NoError(t, err)

	execCommand = func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		cs := []string{"-test.run=TestHelperProcess", "--", name}
		cs = append(cs, arg...)
		cmd := exec.CommandContext(ctx, exe, cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
		return cmd
	}
	t.Cleanup(func() { execCommand = exec.CommandContext })

	t.Setenv("FAKE_FFMPEG_LOG", filepath.Join(t.TempDir(), "ffmpeg-args.json"))
	return Toolchain{FFmpeg: exe, FFprobe: exe}
}

func setDurations(t *testing.T, d map[string]string) {
	t.Helper()
	b, err := json.Marshal(d)
	require.NoError(t, err)
	t.Setenv("FAKE_DURATIONS", string(b))
}

func ffmpegArgs(t *testing.T) []string {
	t.Helper()
	b, err := os.ReadFile(os.Getenv("FAKE_FFMPEG_LOG"))
	require.NoError(t, err)
	var args []string
	require.NoError(t, json.Unmarshal(b, &args))
	return args
}

// TestHelperProcess isn't a real test. It stands in for ffmpeg and ffprobe.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+2:] // skip "--" and the tool name
			break
		}
	}
	path := args[len(args)-1]

	if has(args, "-show_entries") || has(args, "-show_streams") {
		var durations map[string]string
		_ = json.Unmarshal([]byte(os.Getenv("FAKE_DURATIONS")), &durations)
		d := durations[filepath.Base(path)]
		switch d {
		case "fail":
			fmt.Fprintf(os.Stderr, "%s: Invalid data found when processing input\n", path)
			os.Exit(1)
		case "garbage":
			fmt.Fprint(os.Stdout, "not json")
			os.Exit(0)
		}
		if has(args, "-show_streams") {
			fmt.Fprintf(os.Stdout, `{"streams":[{"codec_type":"video"},{"codec_type":"audio"}],"format":{"format_name":"mov,mp4,m4a","duration":%q}}`, d)
		} else {
			fmt.Fprintf(os.Stdout, `{"format":{"duration":%q}}`, d)
		}
		os.Exit(0)
	}

	b, _ := json.Marshal(args)
	_ = os.WriteFile(os.Getenv("FAKE_FFMPEG_LOG"), b, 0o644)
	if code, _ := strconv.Atoi(os.Getenv("FAKE_FFMPEG_EXIT")); code != 0 {
		fmt.Fprintln(os.Stderr, "boom: conversion failed")
		os.Exit(code)
	}
	if err := os.WriteFile(path, []byte("merged"), 0o644); err != nil {
		os.Exit(2)
	}
	os.Exit(0)
}

func has(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}
