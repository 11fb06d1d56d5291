// Package deps locates the external binaries loudlimit shells out to and
// reports whether they are available.
package deps
