// Package cli is the interactive front end of the ClientPro client: a
// small REPL over the services, with no-echo PIN entry and a background
// inbox watcher.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/clientpro-app/clientpro/internal/client/config"
	"github.com/clientpro-app/clientpro/internal/client/relay"
	"github.com/clientpro-app/clientpro/internal/client/services"
	"github.com/clientpro-app/clientpro/internal/client/storage"
	"github.com/clientpro-app/clientpro/internal/logging"
	"github.com/clientpro-app/clientpro/internal/protocol"
)

type App struct {
	config   *config.Config
	repos    *storage.Repositories
	keyring  *services.KeyringService
	records  *services.RecordService
	backups  *services.BackupService
	transfer *services.TransferService
	drive    *services.DriveService
	log      logging.Logger
	reader   *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.NewJSON(slog.LevelInfo)

	repos, err := storage.InitDatabase(ctx, c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	app := &App{config: c, repos: repos, log: log, reader: bufio.NewReader(os.Stdin)}

	app.keyring = services.NewKeyringService(repos.DB, repos.Metadata, nil, log)
	relayClient := relay.NewHTTPClient(c.RelayAddr, app.keyring.Credentials, log)
	app.keyring.SetRelay(relayClient)
	app.records = services.NewRecordService(repos.DB, repos.Customers, repos.Images, app.keyring, log)
	app.backups = services.NewBackupService(repos.DB, app.records, repos.Backups, repos.Metadata,
		relayClient, app.keyring, app.keyring, c.LegacySecret, log)
	app.transfer = services.NewTransferService(app.backups, repos.Metadata, relayClient, app.keyring, log)
	app.drive = services.NewDriveService(app.records, relayClient, app.keyring, log)

	return app, nil
}

func (a *App) Run(ctx context.Context) {
	defer func() { _ = a.repos.DB.Close() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.transfer.StartInboxWatcher(ctx, a.config.PollInterval, func(items []protocol.InboxItem) {
		fmt.Printf("\n[inbox] %d transfer(s) waiting, see 'inbox'\n", len(items))
	})
	go a.backups.StartAutoBackup(ctx, a.config.PollInterval, a.config.AutoBackupPeriod)

	a.Root(ctx)
}

func (a *App) status(ctx context.Context) string {
	state, err := a.keyring.State(ctx)
	if err != nil {
		return "?"
	}
	if state != services.StateNotActivated {
		if id, err := a.keyring.EmployeeID(ctx); err == nil && id != "" {
			return fmt.Sprintf("%s %s", id, state)
		}
	}
	return string(state)
}
