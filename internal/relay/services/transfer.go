package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/clientpro-app/clientpro/internal/common"
	"github.com/clientpro-app/clientpro/internal/cryptox"
	"github.com/clientpro-app/clientpro/internal/logging"
	"github.com/clientpro-app/clientpro/internal/protocol"
	"github.com/clientpro-app/clientpro/internal/relay/models"
	"github.com/clientpro-app/clientpro/internal/relay/repositories/repomanager"
)

// TransferService brokers sealed backups between colleagues' inboxes.
type TransferService struct {
	db  *sql.DB
	rm  repomanager.RepositoryManager
	log logging.Logger
}

func NewTransferService(db *sql.DB, rm repomanager.RepositoryManager, log logging.Logger) *TransferService {
	return &TransferService{db: db, rm: rm, log: log}
}

// Upload parks a sealed backup in the recipient's inbox and returns the
// transfer id. The relay refuses oversized payloads and anything that is
// not an envelope; it never opens the cipher.
func (s *TransferService) Upload(ctx context.Context, from *models.Account, to, filename, cipher, hash string) (string, error) {
	if to == from.EmployeeID {
		return "", fmt.Errorf("%w: cannot send a backup to yourself", common.ErrInvalidRecipient)
	}
	if len(cipher) == 0 {
		return "", cryptox.ErrEmptyCipher
	}
	if len(cipher) > protocol.MaxSendBytes {
		return "", common.ErrPayloadTooLarge
	}
	if !cryptox.IsEnvelope(cipher) {
		return "", common.ErrPlaintextLeak
	}

	recipient, err := s.rm.Accounts(s.db).GetByEmployeeID(ctx, to)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("%w: unknown employee %s", common.ErrInvalidRecipient, to)
		}
		return "", err
	}
	if !recipient.Active() {
		return "", fmt.Errorf("%w: account %s is locked", common.ErrInvalidRecipient, to)
	}

	now := time.Now().UnixMilli()
	t := &models.Transfer{
		TransferID:     models.NewTransferID(),
		FromEmployeeID: from.EmployeeID,
		DeviceID:       from.DeviceID,
		ToEmployeeID:   to,
		Filename:       filename,
		Cipher:         cipher,
		Size:           int64(len(cipher)),
		Hash:           hash,
		CreatedAt:      now,
		ExpiresAt:      now + protocol.TransferTTL.Milliseconds(),
	}

	if err := s.rm.Transfers(s.db).Create(ctx, t); err != nil {
		return "", err
	}

	s.log.Info(ctx, "transfer uploaded",
		"transfer", t.TransferID, "from", from.EmployeeID, "to", to, "size", t.Size)
	return t.TransferID, nil
}

// Inbox lists live transfers addressed to the account, purging expired
// rows opportunistically first.
func (s *TransferService) Inbox(ctx context.Context, employeeID string) ([]protocol.InboxItem, error) {
	repo := s.rm.Transfers(s.db)
	now := time.Now().UnixMilli()

	if n, err := repo.PurgeExpired(ctx, now); err != nil {
		s.log.Warn(ctx, "expired-transfer purge failed", "error", err)
	} else if n > 0 {
		s.log.Info(ctx, "purged expired transfers", "count", n)
	}

	items, err := repo.ListForRecipient(ctx, employeeID, now)
	if err != nil {
		return nil, err
	}

	result := make([]protocol.InboxItem, 0, len(items))
	for _, t := range items {
		result = append(result, protocol.InboxItem{
			TransferID: t.TransferID,
			From:       t.FromEmployeeID,
			FromName:   t.FromName,
			Filename:   t.Filename,
			Size:       t.Size,
			Hash:       t.Hash,
			CreatedAt:  t.CreatedAt,
			ExpiresAt:  t.ExpiresAt,
		})
	}
	return result, nil
}

// Download hands a transfer's cipher to its recipient. Transfers addressed
// to anyone else, or already expired, surface as not found.
func (s *TransferService) Download(ctx context.Context, employeeID, transferID string) (*models.Transfer, error) {
	now := time.Now().UnixMilli()
	return s.rm.Transfers(s.db).GetForRecipient(ctx, transferID, employeeID, now)
}

// Delete removes a transfer from the recipient's inbox.
func (s *TransferService) Delete(ctx context.Context, employeeID, transferID string) error {
	return s.rm.Transfers(s.db).DeleteForRecipient(ctx, transferID, employeeID)
}

// StartJanitor purges expired transfers on a fixed interval until the
// context is cancelled.
func (s *TransferService) StartJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.rm.Transfers(s.db).PurgeExpired(ctx, time.Now().UnixMilli())
			if err != nil {
				s.log.Warn(ctx, "janitor purge failed", "error", err)
				continue
			}
			if n > 0 {
				s.log.Info(ctx, "janitor purged expired transfers", "count", n)
			}
		}
	}
}
