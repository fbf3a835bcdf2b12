// Package media stores uploaded images and hands back their public URL.
package media

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// MaxImageSize bounds a single upload.
const MaxImageSize = 10 << 20

var (
	ErrNotImage = errors.New("file is not an image")
	ErrTooLarge = errors.New("image exceeds 10 MiB")
	ErrEmpty    = errors.New("file is empty")
)

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

// File is an upload as received from the client.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// Store is an object store that serves what it keeps under a public URL.
type Store interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	URL(key string) string
}

type Uploader struct {
	store  Store
	logger echo.Logger
	now    func() time.Time
}

func NewUploader(store Store, logger echo.Logger) *Uploader {
	return &Uploader{store: store, logger: logger, now: time.Now}
}

// Upload checks that f is an image, stores it under a fresh key and returns
// its public URL. Files that fail the checks never reach the store.
func (u *Uploader) Upload(ctx context.Context, f File) (string, error) {
	mtype, err := Check(f)
	if err != nil {
		return "", err
	}

	key := u.key(f.Name, mtype)
	if err := u.store.Put(ctx, key, mtype.String(), f.Body); err != nil {
		u.logger.Errorj(log.JSON{"msg": "image upload failed", "key": key, "error": err.Error()})
		return "", fmt.Errorf("store image %s: %w", key, err)
	}
	u.logger.Infoj(log.JSON{"msg": "image uploaded", "key": key, "size": len(f.Body)})
	return u.store.URL(key), nil
}

// Check validates the declared and the sniffed type of f.
func Check(f File) (*mimetype.MIME, error) {
	if !strings.HasPrefix(f.ContentType, "image/") {
		return nil, ErrNotImage
	}
	if len(f.Body) == 0 {
		return nil, ErrEmpty
	}
	if len(f.Body) > MaxImageSize {
		return nil, ErrTooLarge
	}

	mtype := mimetype.Detect(f.Body)
	// svg is served as a document and may carry script
	if !strings.HasPrefix(mtype.String(), "image/") || mtype.Is("image/svg+xml") {
		return nil, ErrNotImage
	}
	return mtype, nil
}

// key is "<unix millis>-<random>.<ext>", the extension taken from the original
// name when it looks sane and from the sniffed type otherwise.
func (u *Uploader) key(name string, mtype *mimetype.MIME) string {
	ext := strings.ToLower(filepath.Ext(name))
	if !extPattern.MatchString(ext) {
		ext = mtype.Extension()
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d-%s%s", u.now().UnixMilli(), suffix, ext)
}
