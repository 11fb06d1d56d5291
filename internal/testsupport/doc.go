// Package testsupport holds shared test fixtures: temp-directory configs, a
// scripted ffmpeg stand-in, and history store helpers.
package testsupport
