//go:build !unix

package usage

import "io/fs"

// fileID is unused where the platform exposes no inode numbers.
type fileID struct{}

func identify(fs.FileInfo) (fileID, bool) {
	return fileID{}, false
}
