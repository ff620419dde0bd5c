package services

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/clientpro-app/clientpro/internal/client/models"
	"github.com/clientpro-app/clientpro/internal/client/relay"
	"github.com/clientpro-app/clientpro/internal/common"
	"github.com/clientpro-app/clientpro/internal/cryptox"
	"github.com/clientpro-app/clientpro/internal/logging"
	"github.com/clientpro-app/clientpro/internal/netx"
)

// uploadFn / downloadFn are seams so tests can intercept the presigned
// URL traffic.
var (
	uploadFn   = netx.UploadToPresignedURL
	downloadFn = netx.DownloadFromPresignedURL
)

// DriveService moves image archives to and from remote storage through
// relay-issued presigned URLs. Archives are zipped, encrypted under the
// session master key, and referenced from the customer's drive link.
// Backups strip those links, so the archive location never leaks through
// a transfer.
type DriveService struct {
	records *RecordService
	relay   relay.Client
	keys    KeyProvider
	log     logging.Logger
}

func NewDriveService(records *RecordService, relayClient relay.Client, keys KeyProvider, log logging.Logger) *DriveService {
	return &DriveService{records: records, relay: relayClient, keys: keys, log: log}
}

func zipImages(imgs []models.Image) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, img := range imgs {
		w, err := zw.Create(img.ID)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(img.Data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unzipImages(data []byte) (map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		b, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, err
		}
		out[f.Name] = b
	}
	return out, nil
}

// UploadImages archives a customer's photos, encrypts the archive and
// uploads it. On success the object key is stored as the customer's
// drive link.
func (s *DriveService) UploadImages(ctx context.Context, customerID string) (string, error) {
	if !s.keys.Unlocked() {
		return "", common.ErrLocked
	}
	imgs, err := s.records.Images(ctx, customerID)
	if err != nil {
		return "", err
	}
	if len(imgs) == 0 {
		return "", fmt.Errorf("customer %s has no images", customerID)
	}

	archive, err := zipImages(imgs)
	if err != nil {
		return "", err
	}
	sealed, err := cryptox.EncryptBytes(archive, s.keys.MasterKey())
	if err != nil {
		return "", err
	}

	url, objectKey, err := s.relay.PresignUpload(ctx)
	if err != nil {
		return "", err
	}
	if err := uploadFn(url, sealed); err != nil {
		return "", fmt.Errorf("drive upload: %w", err)
	}

	c, err := s.records.Get(ctx, customerID)
	if err != nil {
		return "", err
	}
	c.DriveLink = objectKey
	if err := s.records.Save(ctx, c); err != nil {
		return "", err
	}
	return objectKey, nil
}

// DownloadImages fetches and decrypts a customer's image archive.
func (s *DriveService) DownloadImages(ctx context.Context, customerID string) (map[string][]byte, error) {
	if !s.keys.Unlocked() {
		return nil, common.ErrLocked
	}
	c, err := s.records.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if c.DriveLink == "" {
		return nil, common.ErrorNotFound
	}

	url, err := s.relay.PresignDownload(ctx, c.DriveLink)
	if err != nil {
		return nil, err
	}
	sealed, err := downloadFn(url)
	if err != nil {
		return nil, fmt.Errorf("drive download: %w", err)
	}
	archive, err := cryptox.DecryptBytes(sealed, s.keys.MasterKey())
	if err != nil {
		return nil, err
	}
	return unzipImages(archive)
}
