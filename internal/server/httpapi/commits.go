package httpapi

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/dmitrijs2005/prodhub/internal/common"
	"github.com/dmitrijs2005/prodhub/internal/server/auth"
	"github.com/dmitrijs2005/prodhub/internal/server/services"
	"github.com/dmitrijs2005/prodhub/internal/transfer"
	"github.com/go-chi/chi/v5"
)

const (
	// MaxCommitFiles bounds the number of files in one commit upload.
	MaxCommitFiles = 64

	multipartMemory = 32 << 20
)

func (h *Handler) listCommits(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Commits.ListCommits(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "repoID"), chi.URLParam(r, "branchID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) getCommit(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Commits.GetCommit(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "repoID"), chi.URLParam(r, "commitID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// createCommit accepts multipart/form-data with a "message" field, one or
// more "files" parts and optionally one "paths" value per file holding the
// file's path inside the project folder.
func (h *Handler) createCommit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize*MaxCommitFiles+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if !errors.As(err, &tooLarge) {
			err = fmt.Errorf("%w: invalid multipart body: %v", common.ErrorValidation, err)
		}
		h.writeError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) > MaxCommitFiles {
		h.writeError(w, r, fmt.Errorf("%w: at most %d files per commit", common.ErrorValidation, MaxCommitFiles))
		return
	}
	paths := r.MultipartForm.Value["paths"]
	if len(paths) != 0 && len(paths) != len(headers) {
		h.writeError(w, r, fmt.Errorf("%w: %d paths for %d files", common.ErrorValidation, len(paths), len(headers)))
		return
	}

	files := make([]transfer.File, 0, len(headers))
	for i, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			h.writeError(w, r, fmt.Errorf("open part %s: %w", fh.Filename, err))
			return
		}
		defer f.Close()
		files = append(files, partFile(fh, f, paths, i))
	}

	repoID, branchID := chi.URLParam(r, "repoID"), chi.URLParam(r, "branchID")
	progress := func(p int) {
		h.log.Debug(r.Context(), "commit upload progress", "repository_id", repoID, "branch_id", branchID, "percent", p)
	}

	c, err := h.svc.Commits.CreateCommit(r.Context(), auth.UserIDFromContext(r.Context()), repoID, branchID, services.CreateCommitInput{
		Message: r.FormValue("message"),
		Files:   files,
	}, progress)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func partFile(fh *multipart.FileHeader, body multipart.File, paths []string, i int) transfer.File {
	f := transfer.File{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        body,
	}
	if i < len(paths) && paths[i] != "" {
		f.RelativePath = paths[i]
		f.Name = ""
	}
	return f
}
