package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/clientpro-app/clientpro/internal/common"
	"github.com/clientpro-app/clientpro/internal/dbx"
	"github.com/clientpro-app/clientpro/internal/logging"
	"github.com/clientpro-app/clientpro/internal/relay/config"
	"github.com/clientpro-app/clientpro/internal/relay/models"
	"github.com/clientpro-app/clientpro/internal/relay/repositories/accounts"
	"github.com/clientpro-app/clientpro/internal/relay/repositories/settings"
	"github.com/clientpro-app/clientpro/internal/relay/repositories/transfers"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// In-memory repositories standing in for the postgres implementations.

type fakeAccounts struct {
	mu   sync.Mutex
	rows map[string]*models.Account // by employee id
}

func (f *fakeAccounts) GetByActivationKey(ctx context.Context, key string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.rows {
		if a.ActivationKey == key {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccounts) GetByEmployeeID(ctx context.Context, employeeID string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[employeeID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) BindDevice(ctx context.Context, employeeID, deviceID, deviceInfo string, activatedAt int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[employeeID]
	if !ok {
		return common.ErrorNotFound
	}
	a.DeviceID = deviceID
	a.DeviceInfo = deviceInfo
	a.ActivatedAt = activatedAt
	return nil
}

func (f *fakeAccounts) ListActive(ctx context.Context) ([]models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Account
	for _, a := range f.rows {
		if a.Active() {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

type fakeTransfers struct {
	mu       sync.Mutex
	rows     map[string]*models.Transfer
	accounts *fakeAccounts
}

func (f *fakeTransfers) Create(ctx context.Context, t *models.Transfer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.rows[t.TransferID] = &cp
	return nil
}

func (f *fakeTransfers) ListForRecipient(ctx context.Context, employeeID string, now int64) ([]models.Transfer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Transfer
	for _, t := range f.rows {
		if t.ToEmployeeID == employeeID && t.ExpiresAt > now {
			cp := *t
			cp.Cipher = ""
			// mirror the postgres repo's join on accounts for the sender name
			if a, err := f.accounts.GetByEmployeeID(ctx, t.FromEmployeeID); err == nil {
				cp.FromName = a.Name
			}
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (f *fakeTransfers) GetForRecipient(ctx context.Context, transferID, employeeID string, now int64) (*models.Transfer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[transferID]
	if !ok || t.ToEmployeeID != employeeID || t.ExpiresAt <= now {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTransfers) DeleteForRecipient(ctx context.Context, transferID, employeeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[transferID]
	if !ok || t.ToEmployeeID != employeeID {
		return common.ErrorNotFound
	}
	delete(f.rows, transferID)
	return nil
}

func (f *fakeTransfers) PurgeExpired(ctx context.Context, now int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, t := range f.rows {
		if t.ExpiresAt <= now {
			delete(f.rows, id)
			n++
		}
	}
	return n, nil
}

type fakeSettings struct {
	mu   sync.Mutex
	rows map[string]string
}

func (f *fakeSettings) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.rows[key]
	if !ok {
		return "", common.ErrorNotFound
	}
	return v, nil
}

func (f *fakeSettings) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[key] = value
	return nil
}

type fakeRepoManager struct {
	accounts  *fakeAccounts
	transfers *fakeTransfers
	settings  *fakeSettings
}

func newFakeRepoManager() *fakeRepoManager {
	acc := &fakeAccounts{rows: map[string]*models.Account{}}
	return &fakeRepoManager{
		accounts:  acc,
		transfers: &fakeTransfers{rows: map[string]*models.Transfer{}, accounts: acc},
		settings:  &fakeSettings{rows: map[string]string{}},
	}
}

func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository   { return m.accounts }
func (m *fakeRepoManager) Transfers(db dbx.DBTX) transfers.Repository { return m.transfers }
func (m *fakeRepoManager) Settings(db dbx.DBTX) settings.Repository   { return m.settings }
func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func (m *fakeRepoManager) addAccount(employeeID, name, activationKey, status string) {
	m.accounts.rows[employeeID] = &models.Account{
		EmployeeID:    employeeID,
		Name:          name,
		ActivationKey: activationKey,
		Status:        status,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:       "test-secret",
		SigTTL:          time.Hour,
		JanitorInterval: time.Minute,
	}
}
