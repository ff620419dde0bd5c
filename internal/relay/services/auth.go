// Package services holds the relay's domain logic: account activation and
// authorization, global key-material issuance, the transfer inbox and
// presigned drive storage.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/clientpro-app/clientpro/internal/common"
	"github.com/clientpro-app/clientpro/internal/cryptox"
	"github.com/clientpro-app/clientpro/internal/logging"
	"github.com/clientpro-app/clientpro/internal/protocol"
	"github.com/clientpro-app/clientpro/internal/relay/auth"
	"github.com/clientpro-app/clientpro/internal/relay/config"
	"github.com/clientpro-app/clientpro/internal/relay/models"
	"github.com/clientpro-app/clientpro/internal/relay/repositories/repomanager"
	"github.com/clientpro-app/clientpro/internal/relay/repositories/settings"
)

// AuthService owns activation, device signatures and kdata issuance.
type AuthService struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	config *config.Config
	log    logging.Logger
}

func NewAuthService(db *sql.DB, rm repomanager.RepositoryManager, c *config.Config, log logging.Logger) *AuthService {
	return &AuthService{db: db, rm: rm, config: c, log: log}
}

// Activate binds a device to the account owning the activation key and
// mints its signature. Unknown keys return ErrActivationDenied; keys of a
// locked account return ErrAccountLocked.
func (s *AuthService) Activate(ctx context.Context, activationKey, deviceID, deviceInfo string) (*models.Account, string, error) {
	repo := s.rm.Accounts(s.db)

	account, err := repo.GetByActivationKey(ctx, activationKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrActivationDenied
		}
		return nil, "", err
	}
	if !account.Active() {
		return nil, "", common.ErrAccountLocked
	}

	now := time.Now().UnixMilli()
	if err := repo.BindDevice(ctx, account.EmployeeID, deviceID, deviceInfo, now); err != nil {
		return nil, "", err
	}

	sig, err := auth.GenerateSig(account.EmployeeID, deviceID, []byte(s.config.SecretKey), s.config.SigTTL)
	if err != nil {
		return nil, "", err
	}

	s.log.Info(ctx, "device activated", "employee", account.EmployeeID, "device", deviceID)

	account.DeviceID = deviceID
	account.DeviceInfo = deviceInfo
	account.ActivatedAt = now
	return account, sig, nil
}

// Authorize checks a device signature against the account it claims. The
// signature must verify, name the calling device, and match the device the
// account is currently bound to; a revoked account returns ErrAccountLocked.
func (s *AuthService) Authorize(ctx context.Context, deviceID, sig string) (*models.Account, error) {
	if sig == "" || deviceID == "" {
		return nil, common.ErrorUnauthorized
	}

	employeeID, sigDeviceID, err := auth.ParseSig(sig, []byte(s.config.SecretKey))
	if err != nil {
		return nil, err
	}
	if sigDeviceID != deviceID {
		return nil, common.ErrorUnauthorized
	}

	account, err := s.rm.Accounts(s.db).GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	if account.DeviceID != deviceID {
		return nil, common.ErrorUnauthorized
	}
	if !account.Active() {
		return nil, common.ErrAccountLocked
	}
	return account, nil
}

// IssueKData returns the deployment-wide backup key material, creating it
// on first use. Only called for authorized, active accounts.
func (s *AuthService) IssueKData(ctx context.Context) (string, error) {
	repo := s.rm.Settings(s.db)

	encoded, err := repo.Get(ctx, settings.KeyKData)
	if err == nil {
		return encoded, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return "", err
	}

	encoded = cryptox.EncodeKData(cryptox.NewKData())
	if err := repo.Set(ctx, settings.KeyKData, encoded); err != nil {
		return "", err
	}
	s.log.Info(ctx, "generated deployment kdata")
	return encoded, nil
}

// ListUsers returns all active accounts as directory entries.
func (s *AuthService) ListUsers(ctx context.Context) ([]protocol.User, error) {
	accounts, err := s.rm.Accounts(s.db).ListActive(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]protocol.User, 0, len(accounts))
	for _, a := range accounts {
		users = append(users, protocol.User{EmployeeID: a.EmployeeID, Name: a.Name})
	}
	return users, nil
}
