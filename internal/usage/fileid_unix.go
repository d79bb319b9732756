//go:build unix

package usage

import (
	"io/fs"
	"syscall"
)

// fileID identifies a filesystem object by device and inode.
type fileID struct {
	dev uint64
	ino uint64
}

func identify(info fs.FileInfo) (fileID, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok || stat == nil {
		return fileID{}, false
	}

	//nolint:gosec,unconvert // Dev and Ino types differ per platform
	return fileID{dev: uint64(stat.Dev), ino: uint64(stat.Ino)}, true
}
