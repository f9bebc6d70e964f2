//go:build windows

package parser

import "os"

// openNoFollow opens a session log for reading. Windows has no
// O_NOFOLLOW; the walker's regular-file check is the only guard.
func openNoFollow(path string) (*os.File, error) {
	return os.Open(path)
}
