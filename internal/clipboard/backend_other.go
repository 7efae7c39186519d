//go:build !darwin && !windows && !linux

package clipboard

// NewBackend returns a no-op backend suitable for headless hosts.
func NewBackend() Backend {
	return Headless()
}
