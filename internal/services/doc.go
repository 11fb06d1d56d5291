// Package services defines shared utilities consumed by the normalization
// pipeline and the external tool wrappers.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, asset paths, and stage names
//     for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures with errors.Is (user-actionable vs external tool).
//
// Use these helpers when wiring new pipeline steps so error handling and
// observability stay uniform.
package services
