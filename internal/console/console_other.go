//go:build !windows

package console

// StartedFromExplorer is always false outside Windows.
func StartedFromExplorer() bool { return false }
