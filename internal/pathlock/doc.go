// Package pathlock serializes work on a single asset path.
//
// A Locker combines an in-process keyed mutex with an advisory file lock
// under a shared lock directory, so two workers in one batch and two separate
// loudlimit processes never stage the same file at the same time.
package pathlock
