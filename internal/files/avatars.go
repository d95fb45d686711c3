// Package files stores user-uploaded content on local disk.
package files

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"finboard/internal/core"
)

// AvatarStore keeps one avatar per user under the upload directory,
// named by user id so a new upload replaces the previous one.
type AvatarStore struct {
	dir string
}

func NewAvatarStore(dir string) (*AvatarStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &AvatarStore{dir: dir}, nil
}

// Save writes the uploaded avatar, enforcing the size cap, and returns
// the relative path to store on the user record.
func (s *AvatarStore) Save(userID int64, contentType string, r io.Reader) (string, error) {
	ext := extensionFor(contentType)
	name := strconv.FormatInt(userID, 10) + ext

	f, err := os.CreateTemp(s.dir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("create avatar file: %w", err)
	}
	defer os.Remove(f.Name())

	n, err := io.Copy(f, io.LimitReader(r, core.MaxAvatarBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write avatar: %w", err)
	}
	if n > core.MaxAvatarBytes {
		return "", fmt.Errorf("avatar exceeds %d bytes", core.MaxAvatarBytes)
	}

	// Drop avatars with a different extension left by older uploads.
	s.removeExisting(userID)

	if err := os.Rename(f.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	return name, nil
}

// Open returns the stored avatar for serving.
func (s *AvatarStore) Open(path string) (*os.File, error) {
	// The stored path is a bare file name; reject anything that
	// tries to escape the upload directory.
	if path != filepath.Base(path) || path == "." || path == "" {
		return nil, os.ErrNotExist
	}
	return os.Open(filepath.Join(s.dir, path))
}

func (s *AvatarStore) removeExisting(userID int64) {
	prefix := strconv.FormatInt(userID, 10) + "."
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix) {
			os.Remove(filepath.Join(s.dir, e.Name()))
		}
	}
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
