package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/clientpro-app/clientpro/internal/common"
)

// Backup seals a full backup of all records and stores it locally.
func (a *App) Backup(ctx context.Context) error {
	rec, err := a.backups.Create(ctx)
	if err != nil {
		if errors.Is(err, common.ErrBackupUnchanged) {
			fmt.Println("Nothing changed since the last backup.")
			return nil
		}
		return err
	}
	fmt.Println("Created:", rec.ID, rec.Filename)
	return nil
}

// Backups lists stored backups, newest first.
func (a *App) Backups(ctx context.Context) error {
	items, err := a.backups.List(ctx)
	if err != nil {
		return err
	}
	for _, b := range items {
		fmt.Printf("%s  %s  %s  %d bytes  %s\n",
			b.ID, fmtMillis(b.CreatedAt), b.Kind, b.Size, b.Filename)
	}
	fmt.Printf("%d backup(s)\n", len(items))
	return nil
}

// Restore merges the contents of a stored backup into the record store.
func (a *App) Restore(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter backup id", os.Stdout)
	if err != nil {
		return err
	}

	ok, err := getConfirm(a.reader, "Restore merges these records over the current ones. Continue?", os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Cancelled.")
		return nil
	}

	n, err := a.backups.RestoreLocal(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("Restored %d record(s)\n", n)
	return nil
}

// Export writes a stored backup into the export directory as a .cpb file.
func (a *App) Export(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter backup id", os.Stdout)
	if err != nil {
		return err
	}

	path, err := a.backups.ExportToFile(ctx, id, a.config.ExportDir)
	if err != nil {
		return err
	}
	fmt.Println("Exported to:", path)
	return nil
}

// Import restores records from a .cpb file on disk. Both current-format and
// legacy backups are accepted.
func (a *App) Import(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Enter backup file path", os.Stdout)
	if err != nil {
		return err
	}

	ok, err := getConfirm(a.reader, "Restore merges these records over the current ones. Continue?", os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Cancelled.")
		return nil
	}

	n, err := a.backups.RestoreFromFile(ctx, path)
	if err != nil {
		return err
	}
	fmt.Printf("Restored %d record(s)\n", n)
	return nil
}

// AutoBackup shows or toggles the periodic background backup.
//
//	autobackup          show current setting
//	autobackup on|off   enable or disable
func (a *App) AutoBackup(ctx context.Context, args []string) error {
	if len(args) == 0 {
		enabled, err := a.backups.AutoBackupEnabled(ctx)
		if err != nil {
			return err
		}
		if enabled {
			fmt.Println("Auto backup is on (period:", a.config.AutoBackupPeriod, ")")
		} else {
			fmt.Println("Auto backup is off")
		}
		return nil
	}

	switch args[0] {
	case "on":
		if err := a.backups.SetAutoBackup(ctx, true); err != nil {
			return err
		}
		fmt.Println("Auto backup enabled.")
	case "off":
		if err := a.backups.SetAutoBackup(ctx, false); err != nil {
			return err
		}
		fmt.Println("Auto backup disabled.")
	default:
		return fmt.Errorf("usage: autobackup [on|off]")
	}
	return nil
}
