package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/clientpro-app/clientpro/internal/client/models"
)

func fmtMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Format("2006-01-02 15:04")
}

func printCustomerLine(c *models.Customer) {
	fmt.Printf("%s  %-20s  %-11s  %s  limit %.0f\n",
		c.ID, c.Name, c.Status, fmtMillis(c.UpdatedAt), c.CreditLimit)
}

// Add collects a new client record interactively. If another record already
// carries the same ID number or phone, the user has to confirm before the
// duplicate is saved.
func (a *App) Add(ctx context.Context) error {
	c := &models.Customer{}

	name, err := getSimpleText(a.reader, "Enter client name", os.Stdout)
	if err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("name is required")
	}
	c.Name = name

	if c.Phone, err = getSimpleText(a.reader, "Enter phone", os.Stdout); err != nil {
		return err
	}
	if c.CCCD, err = getSimpleText(a.reader, "Enter ID number (CCCD)", os.Stdout); err != nil {
		return err
	}
	if c.Notes, err = GetMultiline(a.reader, "Enter notes:", os.Stdout); err != nil {
		return err
	}

	limit, err := getSimpleText(a.reader, "Enter credit limit", os.Stdout)
	if err != nil {
		return err
	}
	if limit != "" {
		if c.CreditLimit, err = strconv.ParseFloat(limit, 64); err != nil {
			return fmt.Errorf("invalid credit limit: %w", err)
		}
	}

	for {
		assetName, err := getSimpleText(a.reader, "Enter collateral name (empty to finish)", os.Stdout)
		if err != nil {
			return err
		}
		if assetName == "" {
			break
		}
		asset := models.Asset{
			ID:        models.NewAssetID(),
			Name:      assetName,
			CreatedAt: models.NowMillis(),
		}
		if asset.Valuation, err = getSimpleText(a.reader, "Enter valuation", os.Stdout); err != nil {
			return err
		}
		if asset.LoanValue, err = getSimpleText(a.reader, "Enter loan value", os.Stdout); err != nil {
			return err
		}
		c.Assets = append(c.Assets, asset)
	}

	match, err := a.records.FindDuplicate(ctx, c.CCCD, c.Phone, "")
	if err != nil {
		return err
	}
	if match != nil {
		prompt := fmt.Sprintf("A record with the same %s already exists: %s. Save anyway?",
			match.Field, match.Existing.Name)
		ok, err := getConfirm(a.reader, prompt, os.Stdout)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := a.records.Save(ctx, c); err != nil {
		return err
	}
	fmt.Println("Saved:", c.ID)
	return nil
}

// List prints every client record, newest first. Only the display fields
// are decrypted; 'show' opens the rest.
func (a *App) List(ctx context.Context) error {
	items, err := a.records.ListSummaries(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		printCustomerLine(&items[i])
	}
	fmt.Printf("%d record(s)\n", len(items))
	return nil
}

// Show prints one record in full, including collateral and image count.
func (a *App) Show(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter record id", os.Stdout)
	if err != nil {
		return err
	}

	c, err := a.records.Get(ctx, id)
	if err != nil {
		return err
	}

	fmt.Println("Name:        ", c.Name)
	fmt.Println("Phone:       ", c.Phone)
	fmt.Println("CCCD:        ", c.CCCD)
	fmt.Println("Status:      ", c.Status)
	fmt.Println("Credit limit:", c.CreditLimit)
	if c.Notes != "" {
		fmt.Println("Notes:       ", c.Notes)
	}
	if c.DriveLink != "" {
		fmt.Println("Drive:       ", c.DriveLink)
	}
	fmt.Println("Created:     ", fmtMillis(c.CreatedAt))
	fmt.Println("Updated:     ", fmtMillis(c.UpdatedAt))

	for _, asset := range c.Assets {
		line := asset.Name
		if asset.Valuation != "" {
			line += " (" + asset.Valuation + ")"
		}
		if asset.LoanValue != "" {
			line += " loan " + asset.LoanValue
		}
		fmt.Println("Collateral:  ", line)
	}

	imgs, err := a.records.Images(ctx, id)
	if err != nil {
		return err
	}
	if len(imgs) > 0 {
		fmt.Printf("Images:       %d\n", len(imgs))
	}
	return nil
}

// Edit updates an existing record field by field. An empty answer keeps the
// current value.
func (a *App) Edit(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter record id", os.Stdout)
	if err != nil {
		return err
	}

	c, err := a.records.Get(ctx, id)
	if err != nil {
		return err
	}

	edit := func(prompt, current string) (string, error) {
		v, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s]", prompt, current), os.Stdout)
		if err != nil {
			return "", err
		}
		if v == "" {
			return current, nil
		}
		return v, nil
	}

	if c.Name, err = edit("Name", c.Name); err != nil {
		return err
	}
	if c.Phone, err = edit("Phone", c.Phone); err != nil {
		return err
	}
	if c.CCCD, err = edit("CCCD", c.CCCD); err != nil {
		return err
	}
	if c.Notes, err = edit("Notes", c.Notes); err != nil {
		return err
	}

	status, err := edit("Status (pending/approved)", string(c.Status))
	if err != nil {
		return err
	}
	switch models.CustomerStatus(status) {
	case models.StatusPending, models.StatusApproved:
		c.Status = models.CustomerStatus(status)
	default:
		return fmt.Errorf("unknown status: %s", status)
	}

	limit, err := edit("Credit limit", strconv.FormatFloat(c.CreditLimit, 'f', -1, 64))
	if err != nil {
		return err
	}
	if c.CreditLimit, err = strconv.ParseFloat(limit, 64); err != nil {
		return fmt.Errorf("invalid credit limit: %w", err)
	}

	match, err := a.records.FindDuplicate(ctx, c.CCCD, c.Phone, c.ID)
	if err != nil {
		return err
	}
	if match != nil {
		prompt := fmt.Sprintf("Another record with the same %s exists: %s. Save anyway?",
			match.Field, match.Existing.Name)
		ok, err := getConfirm(a.reader, prompt, os.Stdout)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := a.records.Save(ctx, c); err != nil {
		return err
	}
	fmt.Println("Saved.")
	return nil
}

// Delete removes a record and its images after confirmation.
func (a *App) Delete(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter record id to delete", os.Stdout)
	if err != nil {
		return err
	}

	c, err := a.records.Get(ctx, id)
	if err != nil {
		return err
	}

	ok, err := getConfirm(a.reader, fmt.Sprintf("Delete %s and all attached images?", c.Name), os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := a.records.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Println("Deleted.")
	return nil
}

// Find lists records whose name, phone or ID number contains the given text.
func (a *App) Find(ctx context.Context) error {
	query, err := getSimpleText(a.reader, "Enter search text", os.Stdout)
	if err != nil {
		return err
	}
	query = strings.ToLower(strings.Join(strings.Fields(query), ""))
	if query == "" {
		return fmt.Errorf("empty query")
	}

	items, err := a.records.ListSummaries(ctx)
	if err != nil {
		return err
	}

	n := 0
	for i := range items {
		c := &items[i]
		haystack := strings.ToLower(strings.Join(strings.Fields(c.Name+c.Phone+c.CCCD), ""))
		if strings.Contains(haystack, query) {
			printCustomerLine(c)
			n++
		}
	}
	fmt.Printf("%d match(es)\n", n)
	return nil
}

// AddImage attaches a photo from a local file to a record, optionally bound
// to one of its collateral items.
func (a *App) AddImage(ctx context.Context) error {
	customerID, err := getSimpleText(a.reader, "Enter record id", os.Stdout)
	if err != nil {
		return err
	}
	path, err := getSimpleText(a.reader, "Enter image file path", os.Stdout)
	if err != nil {
		return err
	}
	assetID, err := getSimpleText(a.reader, "Enter collateral id (optional)", os.Stdout)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	img, err := a.records.AddImage(ctx, customerID, assetID, data)
	if err != nil {
		return err
	}
	fmt.Println("Stored:", img.ID)
	return nil
}
