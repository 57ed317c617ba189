package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"quizcraft/engine"
)

// ImageStore keeps uploaded cover images and returns a public URL for each.
type ImageStore interface {
	UploadImage(ctx context.Context, r io.Reader, filename string, ownerID uint) (string, error)
}

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// DiskImageStore writes images under dir and serves them from
// baseURL + "/uploads".
type DiskImageStore struct {
	dir       string
	baseURL   string
	closeFile func(*os.File) error
}

func NewDiskImageStore(dir, baseURL string) *DiskImageStore {
	return &DiskImageStore{
		dir:       dir,
		baseURL:   strings.TrimRight(baseURL, "/"),
		closeFile: (*os.File).Close,
	}
}

func (s *DiskImageStore) UploadImage(ctx context.Context, r io.Reader, filename string, ownerID uint) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		if errors.Is(err, io.EOF) {
			return "", ErrInvalidImage
		}
		return "", errors.Wrap(err, "read upload")
	}
	head = head[:n]

	ext, ok := imageExtensions[http.DetectContentType(head)]
	if !ok {
		return "", ErrInvalidImage
	}

	ownerDir := filepath.Join(s.dir, fmt.Sprint(ownerID))
	if err := os.MkdirAll(ownerDir, 0o755); err != nil {
		return "", &engine.PersistenceError{Op: "create upload dir", Err: err}
	}

	name := uuid.NewString() + "." + ext
	path := filepath.Join(ownerDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", &engine.PersistenceError{Op: "create upload", Err: err}
	}
	if _, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), contextReader{ctx: ctx, r: r})); err != nil {
		f.Close()
		os.Remove(path)
		return "", &engine.PersistenceError{Op: "write upload", Err: err}
	}
	if err := s.closeFile(f); err != nil {
		os.Remove(path)
		return "", &engine.PersistenceError{Op: "close upload", Err: err}
	}

	logrus.WithFields(logrus.Fields{"owner_id": ownerID, "file": filename, "stored_as": name}).Info("image uploaded")
	return fmt.Sprintf("%s/uploads/%d/%s", s.baseURL, ownerID, name), nil
}

// contextReader stops a copy once ctx is cancelled.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
