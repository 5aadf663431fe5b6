// Package version provides build information for the chores binary.
//
// The variables are set at link time with -ldflags "-X". When they are left
// unset, the values recorded by the Go toolchain in the binary's build info
// are used instead.
package version
