//go:build !linux

package device

// Open is not available on this platform.
func Open(index int) (Device, error) {
	return nil, ErrUnsupported
}

// DetectAndOpen is not available on this platform.
func DetectAndOpen(startIndex int) (Device, error) {
	return nil, ErrUnsupported
}
