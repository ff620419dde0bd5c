// Package services contains the application services of the ClientPro
// client: master-key lifecycle, the record store, the backup manager, the
// transfer service and drive uploads.
package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/clientpro-app/clientpro/internal/client/relay"
	"github.com/clientpro-app/clientpro/internal/client/repositories/metadata"
	"github.com/clientpro-app/clientpro/internal/common"
	"github.com/clientpro-app/clientpro/internal/cryptox"
	"github.com/clientpro-app/clientpro/internal/dbx"
	"github.com/clientpro-app/clientpro/internal/logging"
)

// KeyState is where the installation stands in the key lifecycle.
type KeyState string

const (
	StateNotActivated     KeyState = "not_activated"
	StateAwaitingPinSetup KeyState = "awaiting_pin_setup"
	StateLocked           KeyState = "locked"
	StateUnlocked         KeyState = "unlocked"
)

// KeyProvider is what the other services need from the keyring: the open
// session key, or proof there is none.
type KeyProvider interface {
	MasterKey() string
	Unlocked() bool
}

const masterKeyPrefix = "mk_"

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// KeyringService owns the master key: generation at activation, wrapped
// copies under the PIN and employee guards, unlock/lock, recovery and the
// reactivation paths. The plaintext key lives only in process memory.
type KeyringService struct {
	db    *sql.DB
	meta  metadata.Repository
	relay relay.Client
	log   logging.Logger

	mu        sync.RWMutex
	masterKey string
}

func NewKeyringService(db *sql.DB, meta metadata.Repository, relayClient relay.Client, log logging.Logger) *KeyringService {
	return &KeyringService{db: db, meta: meta, relay: relayClient, log: log}
}

// SetRelay attaches the transport after construction. The keyring and the
// relay client reference each other (the client pulls its credentials from
// the keyring), so one side has to be wired late.
func (k *KeyringService) SetRelay(relayClient relay.Client) {
	k.relay = relayClient
}

// MasterKey returns the open session key, or "" when locked.
func (k *KeyringService) MasterKey() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.masterKey
}

// Unlocked reports whether a session key is open.
func (k *KeyringService) Unlocked() bool {
	return k.MasterKey() != ""
}

// Lock drops the session key; wrapped copies stay put.
func (k *KeyringService) Lock() {
	k.mu.Lock()
	k.masterKey = ""
	k.mu.Unlock()
}

func (k *KeyringService) setKey(key string) {
	k.mu.Lock()
	k.masterKey = key
	k.mu.Unlock()
}

// DeviceID returns the stable installation identifier, creating and
// persisting it on first use. Shape: dev_<epoch-ms>_<rand>.
func (k *KeyringService) DeviceID(ctx context.Context) (string, error) {
	v, err := k.meta.Get(ctx, metadata.KeyDeviceID)
	if err != nil {
		return "", err
	}
	if len(v) > 0 {
		return string(v), nil
	}
	tail, err := common.MakeRandHexString(4)
	if err != nil {
		return "", err
	}
	id := fmt.Sprintf("dev_%d_%s", time.Now().UnixMilli(), tail)
	if err := k.meta.Set(ctx, metadata.KeyDeviceID, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}

// Credentials supplies the relay identity: device id plus the signature
// minted at activation (empty before it).
func (k *KeyringService) Credentials(ctx context.Context) (relay.Credentials, error) {
	deviceID, err := k.DeviceID(ctx)
	if err != nil {
		return relay.Credentials{}, err
	}
	sig, err := k.meta.Get(ctx, metadata.KeyDeviceSig)
	if err != nil {
		return relay.Credentials{}, err
	}
	return relay.Credentials{DeviceID: deviceID, Sig: string(sig)}, nil
}

// State derives the lifecycle state from stored metadata and the session.
func (k *KeyringService) State(ctx context.Context) (KeyState, error) {
	activated, err := k.meta.Get(ctx, metadata.KeyActivated)
	if err != nil {
		return "", err
	}
	if string(activated) != "1" {
		return StateNotActivated, nil
	}
	pinWrap, err := k.meta.Get(ctx, metadata.KeyPinWrap)
	if err != nil {
		return "", err
	}
	if len(pinWrap) == 0 {
		return StateAwaitingPinSetup, nil
	}
	if k.Unlocked() {
		return StateUnlocked, nil
	}
	return StateLocked, nil
}

// EmployeeID returns the account bound to this installation.
func (k *KeyringService) EmployeeID(ctx context.Context) (string, error) {
	v, err := k.meta.Get(ctx, metadata.KeyEmployeeID)
	return string(v), err
}

// newMasterKey builds mk_<epoch-ms>_<base36 tail>.
func newMasterKey() string {
	raw := common.GenerateRandByteArray(8)
	tail := strconv.FormatUint(binary.BigEndian.Uint64(raw), 36)
	return fmt.Sprintf("%s%d_%s", masterKeyPrefix, time.Now().UnixMilli(), tail)
}

// wrapKey seals the master key under a guard string; output is
// base64(nonce||ct) plus the per-wrap salt.
func wrapKey(masterKey, guard string) (wrap string, salt []byte, err error) {
	salt = common.GenerateRandByteArray(16)
	key := cryptox.DeriveWrapKey(cryptox.HashString(guard), salt)
	defer common.WipeByteArray(key)

	sealed, err := cryptox.EncryptBytes([]byte(masterKey), string(key))
	if err != nil {
		return "", nil, err
	}
	return base64.StdEncoding.EncodeToString(sealed), salt, nil
}

// unwrapKey reverses wrapKey; the mk_ prefix doubles as the success check.
func unwrapKey(wrap string, salt []byte, guard string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(wrap)
	if err != nil {
		return "", common.ErrorUnauthorized
	}
	key := cryptox.DeriveWrapKey(cryptox.HashString(guard), salt)
	defer common.WipeByteArray(key)

	plain, err := cryptox.DecryptBytes(raw, string(key))
	if err != nil {
		return "", common.ErrorUnauthorized
	}
	if !strings.HasPrefix(string(plain), masterKeyPrefix) {
		return "", common.ErrorUnauthorized
	}
	return string(plain), nil
}

// WipeFunc removes all local record data; Activate calls it for a
// confirmed different-employee takeover.
type WipeFunc func(ctx context.Context) error

// Activate redeems an activation key with the relay and binds this
// installation to the returned account.
//
// Paths:
//   - fresh install: a new master key is generated, wrapped under the
//     employee guard, and the session moves to PIN setup;
//   - same employee again: the master key is silently recovered from the
//     employee wrap and local data survives;
//   - different employee: confirm must return true, local data is wiped
//     through wipe, then the flow continues as a fresh install.
func (k *KeyringService) Activate(ctx context.Context, activationKey, deviceInfo string, confirm func(existing, incoming string) bool, wipe WipeFunc) error {
	resp, err := k.relay.Activate(ctx, activationKey, deviceInfo)
	if err != nil {
		return err
	}

	existing, err := k.EmployeeID(ctx)
	if err != nil {
		return err
	}

	switch {
	case existing == "" || existing == resp.EmployeeID:
		// fresh install or same account again
	default:
		if confirm == nil || !confirm(existing, resp.EmployeeID) {
			return common.ErrForeignData
		}
		if wipe != nil {
			if err := wipe(ctx); err != nil {
				return fmt.Errorf("wipe before takeover: %w", err)
			}
		}
		for _, key := range []string{
			metadata.KeyPinWrap, metadata.KeyPinSalt,
			metadata.KeySecWrap, metadata.KeySecSalt,
			metadata.KeyLastInboxHash,
		} {
			if err := k.meta.Delete(ctx, key); err != nil {
				return err
			}
		}
		existing = ""
	}

	if existing == resp.EmployeeID {
		// silent recovery from the employee wrap
		if key, err := k.recoverFromEmployeeWrap(ctx, resp.EmployeeID); err == nil {
			k.setKey(key)
		}
	}

	if !k.Unlocked() {
		master := newMasterKey()
		wrap, salt, err := wrapKey(master, resp.EmployeeID)
		if err != nil {
			return err
		}
		if err := k.storeWrap(ctx, metadata.KeySecWrap, metadata.KeySecSalt, wrap, salt); err != nil {
			return err
		}
		// PIN wrap is gone until the user sets one
		if err := k.meta.Delete(ctx, metadata.KeyPinWrap); err != nil {
			return err
		}
		if err := k.meta.Delete(ctx, metadata.KeyPinSalt); err != nil {
			return err
		}
		k.setKey(master)
	}

	return dbx.WithTx(ctx, k.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, metadata.KeyEmployeeID, []byte(resp.EmployeeID)); err != nil {
			return err
		}
		if err := repo.Set(ctx, metadata.KeyEmployeeName, []byte(resp.Name)); err != nil {
			return err
		}
		if err := repo.Set(ctx, metadata.KeyDeviceSig, []byte(resp.Sig)); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyActivated, []byte("1"))
	})
}

func (k *KeyringService) storeWrap(ctx context.Context, wrapKeyName, saltKeyName, wrap string, salt []byte) error {
	if err := k.meta.Set(ctx, wrapKeyName, []byte(wrap)); err != nil {
		return err
	}
	return k.meta.Set(ctx, saltKeyName, salt)
}

func (k *KeyringService) recoverFromEmployeeWrap(ctx context.Context, employeeID string) (string, error) {
	wrap, err := k.meta.Get(ctx, metadata.KeySecWrap)
	if err != nil {
		return "", err
	}
	salt, err := k.meta.Get(ctx, metadata.KeySecSalt)
	if err != nil {
		return "", err
	}
	if len(wrap) == 0 || len(salt) == 0 {
		return "", common.ErrorNotFound
	}
	return unwrapKey(string(wrap), salt, employeeID)
}

// SetupPIN wraps the open session key under a 4-digit PIN. It both
// finishes first-time setup and re-arms the PIN after a recovery.
func (k *KeyringService) SetupPIN(ctx context.Context, pin string) error {
	if !pinPattern.MatchString(pin) {
		return common.ErrInvalidPIN
	}
	master := k.MasterKey()
	if master == "" {
		return common.ErrLocked
	}
	wrap, salt, err := wrapKey(master, pin)
	if err != nil {
		return err
	}
	return k.storeWrap(ctx, metadata.KeyPinWrap, metadata.KeyPinSalt, wrap, salt)
}

// Unlock opens a session from the PIN wrap. A wrong PIN returns
// common.ErrWrongPIN and leaves the stored wrap untouched.
//
// Every attempt also checks the relay in the background: a locked verdict
// strips the activation flag no matter how the local unwrap went. The
// check never blocks the unlock and its failures are only logged.
func (k *KeyringService) Unlock(ctx context.Context, pin string) error {
	go func() {
		if err := k.CheckStatus(context.Background()); err != nil {
			k.log.Debug(context.Background(), "status check on unlock", "error", err)
		}
	}()

	wrap, err := k.meta.Get(ctx, metadata.KeyPinWrap)
	if err != nil {
		return err
	}
	salt, err := k.meta.Get(ctx, metadata.KeyPinSalt)
	if err != nil {
		return err
	}
	if len(wrap) == 0 || len(salt) == 0 {
		return common.ErrNotActivated
	}
	master, err := unwrapKey(string(wrap), salt, pin)
	if err != nil {
		return common.ErrWrongPIN
	}
	k.setKey(master)
	return nil
}

// Recover opens a session from the employee wrap when the PIN is lost.
// The typed employee id must match the bound account. After recovery the
// caller should prompt for a new PIN and call SetupPIN.
func (k *KeyringService) Recover(ctx context.Context, employeeID string) error {
	bound, err := k.EmployeeID(ctx)
	if err != nil {
		return err
	}
	if bound == "" {
		return common.ErrNotActivated
	}
	if employeeID != bound {
		return common.ErrWrongEmployeeID
	}
	master, err := k.recoverFromEmployeeWrap(ctx, employeeID)
	if err != nil {
		return common.ErrWrongEmployeeID
	}
	k.setKey(master)
	return nil
}

// CheckStatus asks the relay about this account. A "locked" verdict demotes the
// installation: the activation flag and signature are stripped, wrapped
// keys and data stay for a later reactivation.
func (k *KeyringService) CheckStatus(ctx context.Context) error {
	_, err := k.relay.CheckStatus(ctx)
	if errors.Is(err, common.ErrAccountLocked) {
		if derr := k.Demote(ctx); derr != nil {
			k.log.Error(ctx, "failed to demote after lock", "error", derr)
		}
		k.Lock()
	}
	return err
}

// Demote strips the activation state without touching record data.
func (k *KeyringService) Demote(ctx context.Context) error {
	if err := k.meta.Delete(ctx, metadata.KeyActivated); err != nil {
		return err
	}
	return k.meta.Delete(ctx, metadata.KeyDeviceSig)
}
