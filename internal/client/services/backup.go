package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/clientpro-app/clientpro/internal/client/models"
	"github.com/clientpro-app/clientpro/internal/client/relay"
	"github.com/clientpro-app/clientpro/internal/client/repositories/backups"
	"github.com/clientpro-app/clientpro/internal/client/repositories/customers"
	"github.com/clientpro-app/clientpro/internal/client/repositories/images"
	"github.com/clientpro-app/clientpro/internal/client/repositories/metadata"
	"github.com/clientpro-app/clientpro/internal/common"
	"github.com/clientpro-app/clientpro/internal/cryptox"
	"github.com/clientpro-app/clientpro/internal/dbx"
	"github.com/clientpro-app/clientpro/internal/filex"
	"github.com/clientpro-app/clientpro/internal/logging"
	"github.com/google/uuid"
)

// Identity names the installation for backup bookkeeping.
type Identity interface {
	DeviceID(ctx context.Context) (string, error)
}

// BackupService builds, stores, exports and restores sealed backups.
// Payloads inside envelopes are plaintext; at-rest safety comes from the
// envelope itself, sealed under relay-issued key material.
type BackupService struct {
	db           *sql.DB
	records      *RecordService
	repo         backups.Repository
	meta         metadata.Repository
	relay        relay.Client
	keys         KeyProvider
	ident        Identity
	legacySecret string
	log          logging.Logger
}

func NewBackupService(db *sql.DB, records *RecordService, repo backups.Repository, meta metadata.Repository, relayClient relay.Client, keys KeyProvider, ident Identity, legacySecret string, log logging.Logger) *BackupService {
	return &BackupService{
		db: db, records: records, repo: repo, meta: meta,
		relay: relayClient, keys: keys, ident: ident,
		legacySecret: legacySecret, log: log,
	}
}

func (s *BackupService) seal(ctx context.Context, payload *models.Payload, kind string) (*models.BackupRecord, string, error) {
	body, err := payload.Marshal()
	if err != nil {
		return nil, "", err
	}
	hash := cryptox.HashString(body)

	kdata, err := s.relay.IssueKData(ctx)
	if err != nil {
		return nil, "", err
	}
	defer common.WipeByteArray(kdata)

	deviceID, err := s.ident.DeviceID(ctx)
	if err != nil {
		return nil, "", err
	}

	sealed, err := cryptox.EncryptEnvelope(body, kdata, map[string]any{
		"kind":   kind,
		"device": deviceID,
		"count":  len(payload.Customers),
	})
	if err != nil {
		return nil, "", err
	}

	now := models.NowMillis()
	rec := &models.BackupRecord{
		ID:        "bk_" + uuid.NewString(),
		Filename:  models.BackupFilename(deviceID, now, hash),
		CreatedAt: now,
		Size:      int64(len(sealed)),
		DeviceID:  deviceID,
		Hash:      hash,
		Encrypted: sealed,
		Kind:      kind,
	}
	return rec, hash, nil
}

// Create seals a full backup of all records. When nothing changed since
// the last full backup the call is refused with ErrBackupUnchanged.
func (s *BackupService) Create(ctx context.Context) (*models.BackupRecord, error) {
	all, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}
	payload := models.NewPayload(all)

	body, err := payload.Marshal()
	if err != nil {
		return nil, err
	}
	last, err := s.repo.LatestHash(ctx)
	if err != nil {
		return nil, err
	}
	if last != "" && last == cryptox.HashString(body) {
		return nil, common.ErrBackupUnchanged
	}

	rec, _, err := s.seal(ctx, payload, models.BackupKindFull)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ExportPartial seals only the chosen records, for sending a subset to a
// colleague. Partial exports skip the anti-spam check.
func (s *BackupService) ExportPartial(ctx context.Context, ids []string) (*models.BackupRecord, error) {
	if len(ids) == 0 {
		return nil, errors.New("no records selected")
	}
	picked := make([]models.Customer, 0, len(ids))
	for _, id := range ids {
		c, err := s.records.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		picked = append(picked, *c)
	}

	rec, _, err := s.seal(ctx, models.NewPayload(picked), models.BackupKindPartial)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns stored backups, newest first.
func (s *BackupService) List(ctx context.Context) ([]models.BackupRecord, error) {
	return s.repo.GetAll(ctx)
}

// Delete removes a stored backup.
func (s *BackupService) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}

// RestoreLocal restores from a backup already stored in the local database.
func (s *BackupService) RestoreLocal(ctx context.Context, id string) (int, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return s.Restore(ctx, rec.Encrypted)
}

// ExportToFile writes a backup's envelope into dir under its canonical
// filename and returns the full path.
func (s *BackupService) ExportToFile(ctx context.Context, id, dir string) (string, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	out, err := filex.EnsureDir("", dir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(out, rec.Filename)
	if err := os.WriteFile(path, []byte(rec.Encrypted), 0o600); err != nil {
		return "", fmt.Errorf("write backup file: %w", err)
	}
	return path, nil
}

func validRestoreRecord(c *models.Customer) error {
	if c.ID == "" {
		return errors.New("record without id")
	}
	if c.Name == "" {
		return errors.New("record without name")
	}
	return nil
}

// Restore opens a sealed backup (current envelope via relay key material,
// or a legacy passphrase backup) and upserts its records into the local
// store, re-encrypted under the local master key. Records not named in the
// payload are left alone, so a partial backup merges instead of erasing.
// The write is all-or-nothing: one malformed record aborts the whole
// transaction.
func (s *BackupService) Restore(ctx context.Context, content string) (int, error) {
	if !s.keys.Unlocked() {
		return 0, common.ErrLocked
	}

	kdata, err := s.relay.IssueKData(ctx)
	if err != nil {
		if s.legacySecret == "" {
			return 0, err
		}
		// offline restore can still work for legacy files
		kdata = nil
	}
	defer common.WipeByteArray(kdata)

	body, _, err := cryptox.DecryptEnvelope(content, kdata, s.legacySecret)
	if err != nil {
		return 0, err
	}
	payload, err := models.ParsePayload(body)
	if err != nil {
		return 0, fmt.Errorf("malformed backup payload: %w", err)
	}

	key := s.keys.MasterKey()
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		imgRepo := images.NewSQLiteRepository(tx)
		custRepo := customers.NewSQLiteRepository(tx)

		for i := range payload.Customers {
			c := payload.Customers[i]
			if err := validRestoreRecord(&c); err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			if c.Status == "" {
				c.Status = models.StatusPending
			}
			stored := encryptCustomer(c, key)
			if err := custRepo.CreateOrUpdate(ctx, &stored); err != nil {
				return err
			}
		}
		for i := range payload.Images {
			img := payload.Images[i]
			if err := imgRepo.CreateOrUpdate(ctx, &img); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(payload.Customers), nil
}

// RestoreFromFile reads an exported .cpb file and restores it.
func (s *BackupService) RestoreFromFile(ctx context.Context, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return s.Restore(ctx, string(content))
}

// AutoBackupEnabled reads the auto-backup flag.
func (s *BackupService) AutoBackupEnabled(ctx context.Context) (bool, error) {
	v, err := s.meta.Get(ctx, metadata.KeyAutoBackup)
	if err != nil {
		return false, err
	}
	return string(v) == "1", nil
}

// SetAutoBackup flips the auto-backup flag.
func (s *BackupService) SetAutoBackup(ctx context.Context, enabled bool) error {
	v := "0"
	if enabled {
		v = "1"
	}
	return s.meta.Set(ctx, metadata.KeyAutoBackup, []byte(v))
}

// StartAutoBackup runs the daily backup pass until ctx is cancelled.
// checkEvery is how often the due-time is evaluated; period is the
// distance between runs (24h in production). Failures are logged, an
// unchanged store just resets the timer.
func (s *BackupService) StartAutoBackup(ctx context.Context, checkEvery, period time.Duration) {
	ticker := time.NewTicker(checkEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.autoBackupPass(ctx, period); err != nil {
				s.log.Warn(ctx, "auto-backup pass failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *BackupService) autoBackupPass(ctx context.Context, period time.Duration) error {
	enabled, err := s.AutoBackupEnabled(ctx)
	if err != nil || !enabled {
		return err
	}
	if !s.keys.Unlocked() {
		return nil
	}

	raw, err := s.meta.Get(ctx, metadata.KeyAutoBackupRan)
	if err != nil {
		return err
	}
	var lastRun int64
	if len(raw) > 0 {
		lastRun, _ = strconv.ParseInt(string(raw), 10, 64)
	}
	now := models.NowMillis()
	if lastRun > 0 && now-lastRun < period.Milliseconds() {
		return nil
	}

	_, err = s.Create(ctx)
	if err != nil && !errors.Is(err, common.ErrBackupUnchanged) {
		return err
	}
	return s.meta.Set(ctx, metadata.KeyAutoBackupRan, []byte(strconv.FormatInt(now, 10)))
}
