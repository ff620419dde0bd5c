package httpapi

import (
	"errors"
	"net/http"

	"github.com/clientpro-app/clientpro/internal/common"
	"github.com/clientpro-app/clientpro/internal/cryptox"
	"github.com/clientpro-app/clientpro/internal/protocol"
	"github.com/clientpro-app/clientpro/internal/relay/models"
)

func ok() protocol.Response {
	return protocol.Response{Status: protocol.StatusSuccess}
}

// domainErr reports whether an error belongs to the protocol conversation
// rather than the relay itself. Domain errors answer HTTP 200 with status
// "error" (or "locked"); anything else is a 500.
func domainErr(err error) bool {
	for _, sentinel := range []error{
		common.ErrActivationDenied,
		common.ErrorUnauthorized,
		common.ErrInvalidToken,
		common.ErrorNotFound,
		common.ErrInvalidRecipient,
		common.ErrPayloadTooLarge,
		common.ErrPlaintextLeak,
		cryptox.ErrEmptyCipher,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrAccountLocked):
		writeJSON(w, http.StatusOK, protocol.Response{
			Status:  protocol.StatusLocked,
			Message: "account locked",
		})
	case domainErr(err):
		writeJSON(w, http.StatusOK, protocol.Response{
			Status:  protocol.StatusError,
			Message: err.Error(),
		})
	default:
		s.log.Error(r.Context(), "request failed",
			"action", r.FormValue(protocol.ParamAction), "error", err)
		writeJSON(w, http.StatusInternalServerError, protocol.Response{
			Status:  protocol.StatusError,
			Message: "internal error",
		})
	}
}

// dispatch routes one request by its "action" parameter. Every action but
// "activate" requires a valid device signature.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusOK, protocol.Response{
			Status: protocol.StatusError, Message: "malformed request",
		})
		return
	}

	action := r.Form.Get(protocol.ParamAction)
	if action == "" {
		writeJSON(w, http.StatusOK, protocol.Response{
			Status: protocol.StatusError, Message: "missing action",
		})
		return
	}

	if action == protocol.ActionActivate {
		s.handleActivate(w, r)
		return
	}

	account, err := s.auth.Authorize(r.Context(),
		r.Form.Get(protocol.ParamDeviceID), r.Form.Get(protocol.ParamSig))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	switch action {
	case protocol.ActionCheckStatus:
		s.handleCheckStatus(w, account)
	case protocol.ActionIssueKData:
		s.handleIssueKData(w, r)
	case protocol.ActionListUsers:
		s.handleListUsers(w, r)
	case protocol.ActionUploadBackup:
		s.handleUploadBackup(w, r, account)
	case protocol.ActionListInbox:
		s.handleListInbox(w, r, account)
	case protocol.ActionDownloadBackup:
		s.handleDownloadBackup(w, r, account)
	case protocol.ActionDeleteBackup:
		s.handleDeleteBackup(w, r, account)
	case protocol.ActionPresignUpload:
		s.handlePresignUpload(w, r)
	case protocol.ActionPresignDownload:
		s.handlePresignDownload(w, r)
	default:
		writeJSON(w, http.StatusOK, protocol.Response{
			Status: protocol.StatusError, Message: "unknown action: " + action,
		})
	}
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	account, sig, err := s.auth.Activate(r.Context(),
		r.Form.Get(protocol.ParamActivationKey),
		r.Form.Get(protocol.ParamDeviceID),
		r.Form.Get(protocol.ParamDeviceInfo))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, protocol.ActivateResponse{
		Response:   ok(),
		EmployeeID: account.EmployeeID,
		Name:       account.Name,
		Sig:        sig,
	})
}

func (s *Server) handleCheckStatus(w http.ResponseWriter, account *models.Account) {
	writeJSON(w, http.StatusOK, protocol.CheckStatusResponse{
		Response:   ok(),
		EmployeeID: account.EmployeeID,
		Name:       account.Name,
	})
}

func (s *Server) handleIssueKData(w http.ResponseWriter, r *http.Request) {
	kdata, err := s.auth.IssueKData(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.KDataResponse{Response: ok(), KData: kdata})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.auth.ListUsers(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.ListUsersResponse{Response: ok(), Users: users})
}

func (s *Server) handleUploadBackup(w http.ResponseWriter, r *http.Request, account *models.Account) {
	transferID, err := s.transfers.Upload(r.Context(), account,
		r.Form.Get(protocol.ParamTo),
		r.Form.Get(protocol.ParamFilename),
		r.Form.Get(protocol.ParamCipher),
		r.Form.Get(protocol.ParamHash))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.UploadBackupResponse{Response: ok(), TransferID: transferID})
}

func (s *Server) handleListInbox(w http.ResponseWriter, r *http.Request, account *models.Account) {
	items, err := s.transfers.Inbox(r.Context(), account.EmployeeID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.ListInboxResponse{Response: ok(), Items: items})
}

func (s *Server) handleDownloadBackup(w http.ResponseWriter, r *http.Request, account *models.Account) {
	t, err := s.transfers.Download(r.Context(), account.EmployeeID, r.Form.Get(protocol.ParamTransferID))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.DownloadBackupResponse{
		Response: ok(),
		Filename: t.Filename,
		Cipher:   t.Cipher,
		Hash:     t.Hash,
	})
}

func (s *Server) handleDeleteBackup(w http.ResponseWriter, r *http.Request, account *models.Account) {
	if err := s.transfers.Delete(r.Context(), account.EmployeeID, r.Form.Get(protocol.ParamTransferID)); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok())
}

func (s *Server) handlePresignUpload(w http.ResponseWriter, r *http.Request) {
	url, key, err := s.drive.PresignUpload(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.PresignResponse{Response: ok(), URL: url, ObjectKey: key})
}

func (s *Server) handlePresignDownload(w http.ResponseWriter, r *http.Request) {
	url, err := s.drive.PresignDownload(r.Context(), r.Form.Get(protocol.ParamObjectKey))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.PresignResponse{Response: ok(), URL: url})
}
