package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/clientpro-app/clientpro/internal/client/models"
	"github.com/clientpro-app/clientpro/internal/client/repositories/customers"
	"github.com/clientpro-app/clientpro/internal/client/repositories/images"
	"github.com/clientpro-app/clientpro/internal/common"
	"github.com/clientpro-app/clientpro/internal/cryptox"
	"github.com/clientpro-app/clientpro/internal/dbx"
	"github.com/clientpro-app/clientpro/internal/logging"
)

// RecordService is the local record store. It owns the encryption
// boundary: everything below it (repositories, SQLite) sees ciphertext,
// everything above it (CLI, backups) sees plaintext.
type RecordService struct {
	db     *sql.DB
	repo   customers.Repository
	images images.Repository
	keys   KeyProvider
	log    logging.Logger
}

func NewRecordService(db *sql.DB, repo customers.Repository, imgRepo images.Repository, keys KeyProvider, log logging.Logger) *RecordService {
	return &RecordService{db: db, repo: repo, images: imgRepo, keys: keys, log: log}
}

func encryptAsset(a models.Asset, key string) models.Asset {
	a.Name = cryptox.EncryptField(a.Name, key)
	a.Link = cryptox.EncryptField(a.Link, key)
	a.Valuation = cryptox.EncryptField(a.Valuation, key)
	a.LoanValue = cryptox.EncryptField(a.LoanValue, key)
	a.Area = cryptox.EncryptField(a.Area, key)
	a.Width = cryptox.EncryptField(a.Width, key)
	a.OnLand = cryptox.EncryptField(a.OnLand, key)
	a.Year = cryptox.EncryptField(a.Year, key)
	a.OCRData = cryptox.EncryptField(a.OCRData, key)
	return a
}

func decryptAsset(a models.Asset, key string) models.Asset {
	a.Name = cryptox.DecryptField(a.Name, key)
	a.Link = cryptox.DecryptField(a.Link, key)
	a.Valuation = cryptox.DecryptField(a.Valuation, key)
	a.LoanValue = cryptox.DecryptField(a.LoanValue, key)
	a.Area = cryptox.DecryptField(a.Area, key)
	a.Width = cryptox.DecryptField(a.Width, key)
	a.OnLand = cryptox.DecryptField(a.OnLand, key)
	a.Year = cryptox.DecryptField(a.Year, key)
	a.OCRData = cryptox.DecryptField(a.OCRData, key)
	return a
}

func encryptCustomer(c models.Customer, key string) models.Customer {
	c.Name = cryptox.EncryptField(c.Name, key)
	c.Phone = cryptox.EncryptField(c.Phone, key)
	c.CCCD = cryptox.EncryptField(c.CCCD, key)
	c.Notes = cryptox.EncryptField(c.Notes, key)
	if len(c.Assets) > 0 {
		assets := make([]models.Asset, len(c.Assets))
		for i, a := range c.Assets {
			assets[i] = encryptAsset(a, key)
		}
		c.Assets = assets
	}
	return c
}

func decryptCustomer(c models.Customer, key string) models.Customer {
	c.Name = cryptox.DecryptField(c.Name, key)
	c.Phone = cryptox.DecryptField(c.Phone, key)
	c.CCCD = cryptox.DecryptField(c.CCCD, key)
	c.Notes = cryptox.DecryptField(c.Notes, key)
	if len(c.Assets) > 0 {
		assets := make([]models.Asset, len(c.Assets))
		for i, a := range c.Assets {
			assets[i] = decryptAsset(a, key)
		}
		c.Assets = assets
	}
	return c
}

// decryptSummary opens only the fields the list views render. Notes and
// the asset array stay as stored, which keeps large stores responsive.
func decryptSummary(c models.Customer, key string) models.Customer {
	c.Name = cryptox.DecryptField(c.Name, key)
	c.Phone = cryptox.DecryptField(c.Phone, key)
	c.CCCD = cryptox.DecryptField(c.CCCD, key)
	return c
}

// Save upserts a record. New records get an id and creation timestamp;
// both timestamps are epoch ms.
func (s *RecordService) Save(ctx context.Context, c *models.Customer) error {
	if !s.keys.Unlocked() {
		return common.ErrLocked
	}
	now := models.NowMillis()
	if c.ID == "" {
		c.ID = models.NewCustomerID()
		c.CreatedAt = now
	}
	if c.Status == "" {
		c.Status = models.StatusPending
	}
	c.UpdatedAt = now

	stored := encryptCustomer(*c, s.keys.MasterKey())
	return s.repo.CreateOrUpdate(ctx, &stored)
}

// Get returns one decrypted record.
func (s *RecordService) Get(ctx context.Context, id string) (*models.Customer, error) {
	if !s.keys.Unlocked() {
		return nil, common.ErrLocked
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := decryptCustomer(*c, s.keys.MasterKey())
	return &out, nil
}

// List returns all records fully decrypted, most recently updated first.
func (s *RecordService) List(ctx context.Context) ([]models.Customer, error) {
	if !s.keys.Unlocked() {
		return nil, common.ErrLocked
	}
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	key := s.keys.MasterKey()
	for i := range all {
		all[i] = decryptCustomer(all[i], key)
	}
	return all, nil
}

// ListSummaries returns all records with just the list-display fields
// (name, phone, CCCD) decrypted, most recently updated first. Callers
// that need notes or collateral follow up with Get.
func (s *RecordService) ListSummaries(ctx context.Context) ([]models.Customer, error) {
	if !s.keys.Unlocked() {
		return nil, common.ErrLocked
	}
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	key := s.keys.MasterKey()
	for i := range all {
		all[i] = decryptSummary(all[i], key)
	}
	return all, nil
}

// Delete removes a record and its images in one transaction.
func (s *RecordService) Delete(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := images.NewSQLiteRepository(tx).DeleteByCustomer(ctx, id); err != nil {
			return err
		}
		return customers.NewSQLiteRepository(tx).DeleteByID(ctx, id)
	})
}

// DuplicateMatch reports which field collided and with whom.
type DuplicateMatch struct {
	Field    string
	Existing models.Customer
}

func normalizeMatchValue(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// FindDuplicate scans the store for another record with the same CCCD or
// phone. Whitespace is ignored, comparison happens on decrypted values,
// and excludeID skips the record being edited. Returns nil when clean.
func (s *RecordService) FindDuplicate(ctx context.Context, cccd, phone, excludeID string) (*DuplicateMatch, error) {
	if !s.keys.Unlocked() {
		return nil, common.ErrLocked
	}
	wantCCCD := normalizeMatchValue(cccd)
	wantPhone := normalizeMatchValue(phone)
	if wantCCCD == "" && wantPhone == "" {
		return nil, nil
	}

	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	key := s.keys.MasterKey()
	for _, stored := range all {
		if stored.ID == excludeID {
			continue
		}
		c := decryptSummary(stored, key)
		if wantCCCD != "" && normalizeMatchValue(c.CCCD) == wantCCCD {
			return &DuplicateMatch{Field: "cccd", Existing: c}, nil
		}
		if wantPhone != "" && normalizeMatchValue(c.Phone) == wantPhone {
			return &DuplicateMatch{Field: "phone", Existing: c}, nil
		}
	}
	return nil, nil
}

// AddImage stores a photo for a customer.
func (s *RecordService) AddImage(ctx context.Context, customerID, assetID string, data []byte) (*models.Image, error) {
	if _, err := s.repo.GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	img := &models.Image{
		ID:         models.NewImageID(),
		CustomerID: customerID,
		AssetID:    assetID,
		Data:       data,
		CreatedAt:  models.NowMillis(),
	}
	if err := s.images.Create(ctx, img); err != nil {
		return nil, err
	}
	return img, nil
}

// Images lists a customer's photos.
func (s *RecordService) Images(ctx context.Context, customerID string) ([]models.Image, error) {
	return s.images.GetByCustomer(ctx, customerID)
}

// Wipe drops every customer, image and backup row. Used by the confirmed
// different-employee takeover.
func (s *RecordService) Wipe(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := images.NewSQLiteRepository(tx).DeleteAll(ctx); err != nil {
			return err
		}
		if err := customers.NewSQLiteRepository(tx).DeleteAll(ctx); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM backups`)
		return err
	})
}
