package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/clientpro-app/clientpro/internal/filex"
)

// Users lists colleagues a backup can be sent to.
func (a *App) Users(ctx context.Context) error {
	users, err := a.transfer.Users(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Printf("%s  %s\n", u.EmployeeID, u.Name)
	}
	fmt.Printf("%d user(s)\n", len(users))
	return nil
}

// Send uploads a stored backup to a colleague's inbox on the relay.
func (a *App) Send(ctx context.Context) error {
	backupID, err := getSimpleText(a.reader, "Enter backup id", os.Stdout)
	if err != nil {
		return err
	}
	to, err := getSimpleText(a.reader, "Enter recipient employee ID", os.Stdout)
	if err != nil {
		return err
	}

	transferID, err := a.transfer.Send(ctx, backupID, to)
	if err != nil {
		return err
	}
	fmt.Println("Sent, transfer id:", transferID)
	return nil
}

// SendRecords seals selected records into a partial backup and sends it.
func (a *App) SendRecords(ctx context.Context) error {
	raw, err := getSimpleText(a.reader, "Enter record ids (comma separated)", os.Stdout)
	if err != nil {
		return err
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("no record ids given")
	}

	to, err := getSimpleText(a.reader, "Enter recipient employee ID", os.Stdout)
	if err != nil {
		return err
	}

	transferID, err := a.transfer.SendRecords(ctx, ids, to)
	if err != nil {
		return err
	}
	fmt.Println("Sent, transfer id:", transferID)
	return nil
}

// Inbox lists transfers waiting for this account on the relay.
func (a *App) Inbox(ctx context.Context) error {
	items, err := a.transfer.Inbox(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		from := item.From
		if item.FromName != "" {
			from = fmt.Sprintf("%s (%s)", item.FromName, item.From)
		}
		fmt.Printf("%s  from %s  %d bytes  expires %s\n",
			item.TransferID, from, item.Size, fmtMillis(item.ExpiresAt))
	}
	fmt.Printf("%d transfer(s)\n", len(items))
	return nil
}

// Receive downloads a transfer, restores its records and removes it from
// the relay.
func (a *App) Receive(ctx context.Context) error {
	transferID, err := getSimpleText(a.reader, "Enter transfer id", os.Stdout)
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

	n, err := a.transfer.ReceiveAndRestore(ctx, transferID)
	if err != nil {
		return err
	}
	fmt.Printf("Restored %d record(s)\n", n)
	return nil
}

// DeleteTransfer removes a pending transfer without restoring it.
func (a *App) DeleteTransfer(ctx context.Context) error {
	transferID, err := getSimpleText(a.reader, "Enter transfer id", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.transfer.Delete(ctx, transferID); err != nil {
		return err
	}
	fmt.Println("Deleted.")
	return nil
}

// DriveUpload packs a record's images into an encrypted archive and uploads
// it to remote storage. The record keeps the storage key as its drive link.
func (a *App) DriveUpload(ctx context.Context) error {
	customerID, err := getSimpleText(a.reader, "Enter record id", os.Stdout)
	if err != nil {
		return err
	}

	objectKey, err := a.drive.UploadImages(ctx, customerID)
	if err != nil {
		return err
	}
	fmt.Println("Uploaded:", objectKey)
	return nil
}

// DriveDownload fetches a record's image archive, decrypts it and writes
// the images into the export directory.
func (a *App) DriveDownload(ctx context.Context) error {
	customerID, err := getSimpleText(a.reader, "Enter record id", os.Stdout)
	if err != nil {
		return err
	}

	imgs, err := a.drive.DownloadImages(ctx, customerID)
	if err != nil {
		return err
	}

	dir, err := filex.EnsureDir(a.config.ExportDir, customerID)
	if err != nil {
		return err
	}
	for id, data := range imgs {
		path := filepath.Join(dir, id)
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return err
		}
		fmt.Println("Saved:", path)
	}
	return nil
}
