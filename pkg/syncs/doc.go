// Package syncs provides synchronization primitives and utilities.
//
// [Backlog] is a counter of outstanding work guarded by a [sync.Mutex], with
// a [sync.Cond] that consumers wait on until work arrives or the backlog is
// closed.
package syncs
