package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/hmartinez-dev/tiendita-backend/api/responses"
	"github.com/hmartinez-dev/tiendita-backend/api/validators"
	backupsvc "github.com/hmartinez-dev/tiendita-backend/internal/backup"
	pkgerrors "github.com/hmartinez-dev/tiendita-backend/pkg/errors"
	"github.com/hmartinez-dev/tiendita-backend/pkg/logger"
)

// Keeps oversized uploads from buffering unbounded.
const maxImportBytes = 16 << 20

// ExportBackup builds the backup document and serves it as a download.
func ExportBackup(svc backupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backup service unavailable"))
			return
		}
		doc, err := svc.Export(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Metadata.FileName+`"`)
		responses.WriteSuccess(w, doc)
	}
}

// ImportBackup restores a previously exported document. Overwriting a
// non-empty database requires confirm=true in the query string.
func ImportBackup(svc backupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backup service unavailable"))
			return
		}

		confirmed, err := validators.ParseQueryBool(r, "confirm", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading backup payload"))
			return
		}

		confirm := func(context.Context) (bool, error) { return confirmed, nil }
		if err := svc.Import(r.Context(), payload, confirm); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "restored"})
	}
}

// ListBackupLog returns the export history, newest first.
func ListBackupLog(svc backupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backup service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.Log(r.Context()))
	}
}

// ResetApplication wipes every collection. Requires confirm=true.
func ResetApplication(svc backupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backup service unavailable"))
			return
		}
		confirmed, err := validators.ParseQueryBool(r, "confirm", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !confirmed {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConfirmRequired, "reset must be confirmed"))
			return
		}
		svc.Reset(r.Context())
		responses.WriteSuccess(w, map[string]string{"status": "reset"})
	}
}
