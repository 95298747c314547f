package blog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxImageBytes is the largest accepted image, 5MiB
const DefaultMaxImageBytes int64 = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// DiskImageStore keeps images in a local directory that is served
// as static files under publicPath.
type DiskImageStore struct {
	dir        string
	publicPath string
	maxBytes   int64
	logger     Logger
	now        func() time.Time
}

func NewDiskImageStore(dir, publicPath string, maxBytes int64) *DiskImageStore {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &DiskImageStore{
		dir:        dir,
		publicPath: "/" + strings.Trim(publicPath, "/"),
		maxBytes:   maxBytes,
		logger:     defLogger{},
		now:        time.Now,
	}
}

func (d *DiskImageStore) WithLogger(logger Logger) *DiskImageStore {
	if logger != nil {
		d.logger = logger
	}
	return d
}

// Dir is the directory images are written to
func (d *DiskImageStore) Dir() string {
	return d.dir
}

// MaxBytes is the size limit for a single image
func (d *DiskImageStore) MaxBytes() int64 {
	return d.maxBytes
}

// Save checks the upload is a JPEG or PNG within the size limit and
// writes it as <uuid>_<unixmillis>.<ext>. Nothing is left on disk
// when it fails.
func (d *DiskImageStore) Save(ctx context.Context, upload ImageUpload) (string, error) {
	if upload.Reader == nil {
		return "", NewBadRequestError("Image is empty")
	}
	if upload.Size > d.maxBytes {
		return "", ErrImageTooLarge
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(upload.Reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", NewInternalError(err, "read image header")
	}
	head = head[:n]

	ext, err := imageExtension(upload.ContentType, head)
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", NewInternalError(err, "create upload dir")
	}

	name := fmt.Sprintf("%s_%d%s", uuid.NewString(), d.now().UnixMilli(), ext)
	target := filepath.Join(d.dir, name)

	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", NewInternalError(err, "create image file")
	}

	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), upload.Reader), d.maxBytes+1)
	written, copyErr := io.Copy(f, body)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		d.discard(target)
		return "", NewInternalError(copyErr, "write image file")
	case closeErr != nil:
		d.discard(target)
		return "", NewInternalError(closeErr, "close image file")
	case written > d.maxBytes:
		d.discard(target)
		return "", ErrImageTooLarge
	}

	return path.Join(d.publicPath, name), nil
}

// Remove deletes an image previously returned by Save. URLs outside
// the store are ignored.
func (d *DiskImageStore) Remove(_ context.Context, url string) error {
	prefix := d.publicPath + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}

	name := path.Base(url)
	if name == "." || name == "/" || name == ".." {
		return nil
	}

	err := os.Remove(filepath.Join(d.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (d *DiskImageStore) discard(target string) {
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		d.logger.Error("unable to remove partial image %s: %v", target, err)
	}
}

// imageExtension accepts the upload only when both the declared type
// and the sniffed bytes are JPEG or PNG.
func imageExtension(declared string, head []byte) (string, error) {
	if declared != "" {
		mediaType, _, err := mime.ParseMediaType(declared)
		if err != nil {
			return "", ErrUnsupportedImageType
		}
		if _, ok := imageExtensions[mediaType]; !ok {
			return "", ErrUnsupportedImageType
		}
	}

	sniffed := http.DetectContentType(head)
	ext, ok := imageExtensions[sniffed]
	if !ok {
		return "", ErrUnsupportedImageType
	}
	return ext, nil
}
