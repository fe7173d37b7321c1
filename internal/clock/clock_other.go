//go:build !linux

package clock

// threadCPUUs has no portable implementation outside Linux; sessions on
// these platforms are forced to SourceWall by Resolve.
func threadCPUUs() (uint64, bool) {
	return 0, false
}
