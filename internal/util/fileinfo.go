package util

import (
	"os"

	"golang.org/x/sys/unix"
)

// FileInfo contains extended file information, including modification time, size, and inode number.
type FileInfo struct {
	ModTime int64  // Last modification time in nanoseconds
	Size    int64  // File size in bytes
	Inode   uint64 // Inode number (unique file identifier on Unix-like systems)
}

// GetFileInfo retrieves detailed file information, including inode number.
// Supported on Linux and macOS.
func GetFileInfo(path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return nil, err
	}

	return &FileInfo{
		ModTime: stat.ModTime().UnixNano(),
		Size:    stat.Size(),
		Inode:   uint64(st.Ino),
	}, nil
}

// Changed reports whether two snapshots describe different file contents.
func (fi FileInfo) Changed(other FileInfo) bool {
	return fi.ModTime != other.ModTime || fi.Size != other.Size || fi.Inode != other.Inode
}
