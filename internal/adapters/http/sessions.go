package httpadapter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
	"github.com/kirillkom/pdf-digest/internal/infrastructure/export"
)

func (rt *Router) createSession(w http.ResponseWriter, r *http.Request) {
	upload, err := rt.readUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	session, err := rt.ingest.Open(r.Context(), upload)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.recordDocument(session)
	writeJSON(w, http.StatusCreated, newSessionView(session, 0))
}

func (rt *Router) replaceDocument(w http.ResponseWriter, r *http.Request) {
	upload, err := rt.readUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	session, err := rt.ingest.Replace(r.Context(), r.PathValue("id"), upload)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.recordDocument(session)
	writeJSON(w, http.StatusOK, newSessionView(session, 0))
}

func (rt *Router) getSession(w http.ResponseWriter, r *http.Request) {
	visible := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("blocks")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, domain.WrapError(domain.ErrInvalidInput, "parse blocks", fmt.Errorf("blocks must be a non-negative integer")))
			return
		}
		visible = n
	}

	session, err := rt.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(session, visible))
}

func (rt *Router) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := rt.sessions.Close(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) exportSession(w http.ResponseWriter, r *http.Request) {
	exporter, err := export.ForFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, err)
		return
	}
	session, err := rt.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := exporter.Write(&buf, session); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(session, exporter)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// readUpload reads the multipart "file" field within the configured size limit.
func (rt *Router) readUpload(w http.ResponseWriter, r *http.Request) (domain.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes())

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.Upload{}, err
		}
		return domain.Upload{}, domain.WrapError(domain.ErrInvalidInput, "read upload", fmt.Errorf("multipart field 'file' is required"))
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("read upload: %w", err)
	}
	return domain.Upload{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Body:     body,
	}, nil
}

func (rt *Router) recordDocument(session *domain.Session) {
	if rt.metrics == nil {
		return
	}
	doc := session.Document
	rt.metrics.RecordDocument(metricsService, doc.PageCount, len(doc.Blocks), doc.Complete)
}
