package tailer

import (
	"io"
	"os"
	"syscall"
)

// fileIdentity is the POSIX (device, inode) pair the spec calls for:
// "identity by inode/device on POSIX ... or equivalent". A renamed-away
// file keeps its identity; a new file created at the old path gets a
// fresh one, which is exactly the rotation signal IsRotated checks for.
type fileIdentity struct {
	dev uint64
	ino uint64
}

func identify(f *os.File) (fileIdentity, error) {
	info, err := f.Stat()
	if err != nil {
		return fileIdentity{}, err
	}
	return identityFromInfo(info), nil
}

func identifyPath(path string) (fileIdentity, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileIdentity{}, err
	}
	return identityFromInfo(info), nil
}

func identityFromInfo(info os.FileInfo) fileIdentity {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileIdentity{}
	}
	return fileIdentity{dev: uint64(stat.Dev), ino: stat.Ino}
}

func isEOF(err error) bool {
	return err == io.EOF
}
