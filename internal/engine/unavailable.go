//go:build !maacore

package engine

// Open returns the native engine. This build does not link MaaCore; rebuild with
// -tags maacore to enable it.
func Open() (Engine, error) {
	return nil, ErrUnavailable
}
