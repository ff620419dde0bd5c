package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/clientpro-app/clientpro/internal/client/relay"
	"github.com/clientpro-app/clientpro/internal/client/repositories/metadata"
	"github.com/clientpro-app/clientpro/internal/common"
	"github.com/clientpro-app/clientpro/internal/cryptox"
	"github.com/clientpro-app/clientpro/internal/logging"
	"github.com/clientpro-app/clientpro/internal/protocol"
)

// TransferService moves sealed backups between colleagues through the
// relay inbox, and watches the inbox in the background.
type TransferService struct {
	backups *BackupService
	meta    metadata.Repository
	relay   relay.Client
	keyring *KeyringService
	log     logging.Logger
}

func NewTransferService(backups *BackupService, meta metadata.Repository, relayClient relay.Client, keyring *KeyringService, log logging.Logger) *TransferService {
	return &TransferService{backups: backups, meta: meta, relay: relayClient, keyring: keyring, log: log}
}

// IsPlaintextLeak reports whether content looks like unencrypted data:
// JSON without the envelope magic, or anything exposing a raw customers
// key. Such payloads must never reach the relay.
func IsPlaintextLeak(content string) bool {
	s := strings.TrimSpace(content)
	if s == "" {
		return false
	}
	if strings.Contains(s, `"customers":`) && !strings.Contains(s, cryptox.EnvelopeMagic) {
		return true
	}
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		return !strings.Contains(s, cryptox.EnvelopeMagic)
	}
	return false
}

// Send uploads a stored backup to a colleague's inbox.
func (s *TransferService) Send(ctx context.Context, backupID, toEmployeeID string) (string, error) {
	rec, err := s.backups.repo.GetByID(ctx, backupID)
	if err != nil {
		return "", err
	}
	if IsPlaintextLeak(rec.Encrypted) || !cryptox.IsEnvelope(rec.Encrypted) {
		return "", common.ErrPlaintextLeak
	}
	if len(rec.Encrypted) > protocol.MaxSendBytes {
		return "", common.ErrPayloadTooLarge
	}
	return s.relay.UploadBackup(ctx, toEmployeeID, rec.Filename, rec.Encrypted, rec.Hash)
}

// SendRecords seals just the chosen records and uploads them.
func (s *TransferService) SendRecords(ctx context.Context, ids []string, toEmployeeID string) (string, error) {
	rec, err := s.backups.ExportPartial(ctx, ids)
	if err != nil {
		return "", err
	}
	return s.Send(ctx, rec.ID, toEmployeeID)
}

// Users lists colleagues available as transfer targets, without self.
func (s *TransferService) Users(ctx context.Context) ([]protocol.User, error) {
	users, err := s.relay.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	self, err := s.keyring.EmployeeID(ctx)
	if err != nil {
		return nil, err
	}
	out := users[:0]
	for _, u := range users {
		if u.EmployeeID != self {
			out = append(out, u)
		}
	}
	return out, nil
}

// Inbox lists pending transfers.
func (s *TransferService) Inbox(ctx context.Context) ([]protocol.InboxItem, error) {
	return s.relay.ListInbox(ctx)
}

// Receive downloads a transfer and returns the sealed envelope.
// Decryption happens in Restore, which re-checks the payload hash.
func (s *TransferService) Receive(ctx context.Context, transferID string) (string, error) {
	resp, err := s.relay.DownloadBackup(ctx, transferID)
	if err != nil {
		return "", err
	}
	return resp.Cipher, nil
}

// ReceiveAndRestore downloads a transfer, restores it into the local
// store and deletes it from the inbox on success.
func (s *TransferService) ReceiveAndRestore(ctx context.Context, transferID string) (int, error) {
	cipher, err := s.Receive(ctx, transferID)
	if err != nil {
		return 0, err
	}
	n, err := s.backups.Restore(ctx, cipher)
	if err != nil {
		return 0, err
	}
	if err := s.relay.DeleteBackup(ctx, transferID); err != nil {
		s.log.Warn(ctx, "restored but failed to clear transfer", "transfer_id", transferID, "error", err)
	}
	return n, nil
}

// Delete removes a transfer from the inbox without restoring it.
func (s *TransferService) Delete(ctx context.Context, transferID string) error {
	return s.relay.DeleteBackup(ctx, transferID)
}

// inboxHash fingerprints the current inbox id-set, so the watcher can
// notify once per distinct state.
func inboxHash(items []protocol.InboxItem) string {
	if len(items) == 0 {
		return ""
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.TransferID
	}
	sort.Strings(ids)
	return cryptox.HashString(strings.Join(ids, ","))
}

// CheckInbox performs one watcher pass: list the inbox, and if its
// fingerprint differs from the last seen one, persist it and report the
// items. Returns nil when there is nothing new.
func (s *TransferService) CheckInbox(ctx context.Context) ([]protocol.InboxItem, error) {
	items, err := s.relay.ListInbox(ctx)
	if err != nil {
		if errors.Is(err, common.ErrAccountLocked) {
			if derr := s.keyring.Demote(ctx); derr != nil {
				s.log.Error(ctx, "failed to demote after lock", "error", derr)
			}
			s.keyring.Lock()
		}
		return nil, err
	}

	hash := inboxHash(items)
	if hash == "" {
		return nil, nil
	}
	last, err := s.meta.Get(ctx, metadata.KeyLastInboxHash)
	if err != nil {
		return nil, err
	}
	if string(last) == hash {
		return nil, nil
	}
	if err := s.meta.Set(ctx, metadata.KeyLastInboxHash, []byte(hash)); err != nil {
		return nil, err
	}
	return items, nil
}

// StartInboxWatcher polls the inbox until ctx is cancelled and calls
// notify for each newly seen inbox state. Poll failures are logged and
// the loop keeps going.
func (s *TransferService) StartInboxWatcher(ctx context.Context, interval time.Duration, notify func(items []protocol.InboxItem)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			items, err := s.CheckInbox(callCtx)
			cancel()
			if err != nil {
				s.log.Debug(ctx, "inbox poll failed", "error", err)
				continue
			}
			if len(items) > 0 && notify != nil {
				notify(items)
			}
		case <-ctx.Done():
			return
		}
	}
}
