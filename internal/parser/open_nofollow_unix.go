//go:build !windows

package parser

import (
	"os"
	"syscall"
)

// openNoFollow opens a session log for reading. The open fails
// with ELOOP when the final path component is a symlink, so a
// file swapped for a link after the walk listed it is never read.
func openNoFollow(path string) (*os.File, error) {
	return os.OpenFile(
		path, os.O_RDONLY|syscall.O_NOFOLLOW, 0,
	)
}
