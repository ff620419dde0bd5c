package services

import (
	"context"
	"testing"

	"github.com/clientpro-app/clientpro/internal/client/models"
	"github.com/clientpro-app/clientpro/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrive_UploadAndDownloadImages(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	e.activate(t, "NV001", "1234")

	c := seedCustomer(t, e, "A", "0901", "0791")
	img, err := e.records.AddImage(ctx, c.ID, "", []byte("front of cccd"))
	require.NoError(t, err)

	e.relay.presignPutURL = "https://bucket.example/put"
	e.relay.presignGetURL = "https://bucket.example/get"
	e.relay.presignKey = "archives/obj-1"

	// intercept the presigned traffic
	var stored []byte
	origUp, origDown := uploadFn, downloadFn
	t.Cleanup(func() { uploadFn, downloadFn = origUp, origDown })
	uploadFn = func(url string, data []byte) error {
		assert.Equal(t, "https://bucket.example/put", url)
		stored = data
		return nil
	}
	downloadFn = func(url string) ([]byte, error) {
		assert.Equal(t, "https://bucket.example/get", url)
		return stored, nil
	}

	drive := NewDriveService(e.records, e.relay, e.keyring, testLogger())

	objectKey, err := drive.UploadImages(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "archives/obj-1", objectKey)
	assert.NotContains(t, string(stored), "front of cccd")

	got, err := e.records.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "archives/obj-1", got.DriveLink)

	files, err := drive.DownloadImages(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("front of cccd"), files[img.ID])
}

func TestDrive_RequiresSessionAndImages(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	drive := NewDriveService(e.records, e.relay, e.keyring, testLogger())

	_, err := drive.UploadImages(ctx, "kh_x")
	assert.ErrorIs(t, err, common.ErrLocked)

	e.activate(t, "NV001", "1234")
	c := &models.Customer{Name: "A", Phone: "0901", CCCD: "0791"}
	require.NoError(t, e.records.Save(ctx, c))

	_, err = drive.UploadImages(ctx, c.ID)
	assert.Error(t, err) // no images yet

	_, err = drive.DownloadImages(ctx, c.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound) // no drive link yet
}
