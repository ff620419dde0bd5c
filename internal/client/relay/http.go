package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/clientpro-app/clientpro/internal/common"
	"github.com/clientpro-app/clientpro/internal/cryptox"
	"github.com/clientpro-app/clientpro/internal/logging"
	"github.com/clientpro-app/clientpro/internal/protocol"
	"github.com/go-resty/resty/v2"
)

// HTTPClient talks to the relay over its action-dispatch REST surface:
// reads go out as GET query strings, writes as form-urlencoded POSTs.
type HTTPClient struct {
	http  *resty.Client
	creds CredentialsFunc
	log   logging.Logger
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, creds CredentialsFunc, log logging.Logger) *HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "application/json")

	return &HTTPClient{http: client, creds: creds, log: log}
}

func (c *HTTPClient) params(ctx context.Context, action string, extra map[string]string) (map[string]string, error) {
	creds, err := c.creds(ctx)
	if err != nil {
		return nil, err
	}
	p := map[string]string{
		protocol.ParamAction:   action,
		protocol.ParamDeviceID: creds.DeviceID,
	}
	if creds.Sig != "" {
		p[protocol.ParamSig] = creds.Sig
	}
	for k, v := range extra {
		p[k] = v
	}
	return p, nil
}

// statusErr maps a protocol response to a sentinel. A "locked" status maps
// to common.ErrAccountLocked so the caller can strip local activation.
func statusErr(action string, r *protocol.Response) error {
	switch {
	case r.OK():
		return nil
	case r.Revoked():
		return common.ErrAccountLocked
	default:
		if r.Message != "" {
			return fmt.Errorf("relay %s: %s", action, r.Message)
		}
		return fmt.Errorf("relay %s failed", action)
	}
}

func (c *HTTPClient) call(ctx context.Context, action string, post bool, extra map[string]string, result any) error {
	p, err := c.params(ctx, action, extra)
	if err != nil {
		return err
	}

	req := c.http.R().SetContext(ctx).SetResult(result)

	var resp *resty.Response
	if post {
		resp, err = req.SetFormData(p).Post("/")
	} else {
		resp, err = req.SetQueryParams(p).Get("/")
	}
	if err != nil {
		c.log.Warn(ctx, "relay call failed", "action", action, "error", err)
		return fmt.Errorf("%w: %v", common.ErrRelayUnavailable, err)
	}
	if resp.StatusCode() >= 500 {
		return fmt.Errorf("%w: %s", common.ErrRelayUnavailable, resp.Status())
	}
	return nil
}

func (c *HTTPClient) CheckStatus(ctx context.Context) (*protocol.CheckStatusResponse, error) {
	var out protocol.CheckStatusResponse
	if err := c.call(ctx, protocol.ActionCheckStatus, false, nil, &out); err != nil {
		return nil, err
	}
	if err := statusErr(protocol.ActionCheckStatus, &out.Response); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Activate(ctx context.Context, activationKey, deviceInfo string) (*protocol.ActivateResponse, error) {
	var out protocol.ActivateResponse
	extra := map[string]string{
		protocol.ParamActivationKey: activationKey,
		protocol.ParamDeviceInfo:    deviceInfo,
	}
	if err := c.call(ctx, protocol.ActionActivate, true, extra, &out); err != nil {
		return nil, err
	}
	if !out.OK() {
		if out.Message != "" {
			return nil, fmt.Errorf("%w: %s", common.ErrActivationDenied, out.Message)
		}
		return nil, common.ErrActivationDenied
	}
	return &out, nil
}

func (c *HTTPClient) IssueKData(ctx context.Context) ([]byte, error) {
	var out protocol.KDataResponse
	if err := c.call(ctx, protocol.ActionIssueKData, false, nil, &out); err != nil {
		return nil, err
	}
	if err := statusErr(protocol.ActionIssueKData, &out.Response); err != nil {
		return nil, err
	}
	return cryptox.DecodeKData(out.KData)
}

func (c *HTTPClient) ListUsers(ctx context.Context) ([]protocol.User, error) {
	var out protocol.ListUsersResponse
	if err := c.call(ctx, protocol.ActionListUsers, false, nil, &out); err != nil {
		return nil, err
	}
	if err := statusErr(protocol.ActionListUsers, &out.Response); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *HTTPClient) UploadBackup(ctx context.Context, to, filename, cipher, hash string) (string, error) {
	var out protocol.UploadBackupResponse
	extra := map[string]string{
		protocol.ParamTo:       to,
		protocol.ParamFilename: filename,
		protocol.ParamCipher:   cipher,
		protocol.ParamHash:     hash,
	}
	if err := c.call(ctx, protocol.ActionUploadBackup, true, extra, &out); err != nil {
		return "", err
	}
	if err := statusErr(protocol.ActionUploadBackup, &out.Response); err != nil {
		return "", err
	}
	return out.TransferID, nil
}

func (c *HTTPClient) ListInbox(ctx context.Context) ([]protocol.InboxItem, error) {
	var out protocol.ListInboxResponse
	if err := c.call(ctx, protocol.ActionListInbox, false, nil, &out); err != nil {
		return nil, err
	}
	if err := statusErr(protocol.ActionListInbox, &out.Response); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *HTTPClient) DownloadBackup(ctx context.Context, transferID string) (*protocol.DownloadBackupResponse, error) {
	var out protocol.DownloadBackupResponse
	extra := map[string]string{protocol.ParamTransferID: transferID}
	if err := c.call(ctx, protocol.ActionDownloadBackup, true, extra, &out); err != nil {
		return nil, err
	}
	if err := statusErr(protocol.ActionDownloadBackup, &out.Response); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteBackup(ctx context.Context, transferID string) error {
	var out protocol.Response
	extra := map[string]string{protocol.ParamTransferID: transferID}
	if err := c.call(ctx, protocol.ActionDeleteBackup, true, extra, &out); err != nil {
		return err
	}
	return statusErr(protocol.ActionDeleteBackup, &out)
}

func (c *HTTPClient) PresignUpload(ctx context.Context) (string, string, error) {
	var out protocol.PresignResponse
	if err := c.call(ctx, protocol.ActionPresignUpload, true, nil, &out); err != nil {
		return "", "", err
	}
	if err := statusErr(protocol.ActionPresignUpload, &out.Response); err != nil {
		return "", "", err
	}
	return out.URL, out.ObjectKey, nil
}

func (c *HTTPClient) PresignDownload(ctx context.Context, objectKey string) (string, error) {
	var out protocol.PresignResponse
	extra := map[string]string{protocol.ParamObjectKey: objectKey}
	if err := c.call(ctx, protocol.ActionPresignDownload, true, extra, &out); err != nil {
		return "", err
	}
	if err := statusErr(protocol.ActionPresignDownload, &out.Response); err != nil {
		return "", err
	}
	return out.URL, nil
}
