package gcsuploader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/google/uuid"
)

var mimeExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/heic": "heic",
	"image/gif":  "gif",
}

// ReceiptObjectName returns receipts/<owner>/<yyyy>/<mm>/<dd>/<uuid>.<ext>.
// Unknown MIME types get the "bin" extension.
func ReceiptObjectName(ownerID int64, now time.Time, mimeType string) string {
	ext, ok := mimeExtensions[strings.ToLower(strings.TrimSpace(mimeType))]
	if !ok {
		ext = "bin"
	}
	return fmt.Sprintf("receipts/%d/%s/%s.%s", ownerID, now.UTC().Format("2006/01/02"), uuid.New().String(), ext)
}

// Archive stores receipt images in one bucket.
type Archive struct {
	storage StorageService
	bucket  string
	now     func() time.Time
}

// NewArchive returns an archive writing to bucket.
func NewArchive(storage StorageService, bucket string) *Archive {
	return &Archive{storage: storage, bucket: bucket, now: time.Now}
}

// ArchiveReceipt uploads the image and returns its gs:// URI.
func (a *Archive) ArchiveReceipt(ctx context.Context, ownerID int64, data []byte, mimeType string) (string, error) {
	object := ReceiptObjectName(ownerID, a.now(), mimeType)

	uri, err := a.storage.UploadBytes(ctx, a.bucket, object, data, mimeType)
	if err != nil {
		return "", fmt.Errorf("ArchiveReceipt: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Info().
		Int64("owner_id", ownerID).
		Str("gcs_uri", uri).
		Int("bytes", len(data)).
		Msg("Archived receipt image")

	return uri, nil
}

// FetchFromGCS lets the archive double as the pipeline's image source.
func (a *Archive) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	return a.storage.FetchFromGCS(ctx, gcsURI)
}
