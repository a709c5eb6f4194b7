package httpadapter

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/kirillkom/docestate/internal/core/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (rt *Router) listDocuments(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rt.state.Documents())
}

func (rt *Router) addDocument(w http.ResponseWriter, r *http.Request) {
	var doc domain.Document
	if err := decodeJSON(w, r, &doc); err != nil {
		writeError(w, err)
		return
	}
	if err := validateDocument(doc); err != nil {
		writeError(w, err)
		return
	}
	rt.state.AddDocument(doc)
	writeJSON(w, http.StatusCreated, doc)
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if rt.uploader == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "uploads are disabled"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.uploadLimit()+multipartSlack)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		rt.recordUpload("rejected", 0)
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	result, err := rt.uploader.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		outcome := "rejected"
		if status >= http.StatusInternalServerError {
			outcome = "failed"
		}
		rt.recordUpload(outcome, 0)
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	rt.recordUpload("accepted", fileHeader.Size)
	writeJSON(w, http.StatusAccepted, result)
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// updateDocument applies the patch to every document with the id. The store
// announces the update even when nothing matched.
func (rt *Router) updateDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var patch domain.DocumentPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}
	if patch.Status != nil && !patch.Status.Valid() {
		writeError(w, domain.WrapError(
			domain.ErrInvalidInput,
			"update document",
			fmt.Errorf("unknown status %q", *patch.Status),
		))
		return
	}

	if !rt.state.UpdateDocument(id, patch) {
		writeError(w, domain.WrapError(domain.ErrDocumentNotFound, "update document", fmt.Errorf("id=%s", id)))
		return
	}

	// The patch may rename the document.
	if patch.ID != nil {
		id = *patch.ID
	}
	doc, err := rt.lookupID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) downloadSummary(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if doc.Summary == nil {
		writeError(w, domain.WrapError(
			domain.ErrDocumentNotFound,
			"download summary",
			fmt.Errorf("document %s has no summary yet", doc.ID),
		))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(SummaryFilename(doc.Name)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(*doc.Summary))
}

func (rt *Router) exportDocuments(w http.ResponseWriter, r *http.Request) {
	if rt.exporter == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "export is disabled"})
		return
	}
	data, err := rt.exporter.DocumentsXLSX(r.Context(), rt.state.Documents())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", attachment("documents.xlsx"))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (rt *Router) lookup(r *http.Request) (domain.Document, error) {
	return rt.lookupID(r.PathValue("id"))
}

func (rt *Router) lookupID(id string) (domain.Document, error) {
	doc, ok := rt.state.Document(id)
	if !ok {
		return domain.Document{}, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
	}
	return doc, nil
}

func (rt *Router) uploadLimit() int64 {
	if rt.cfg.UploadMaxBytes > 0 {
		return rt.cfg.UploadMaxBytes
	}
	return 10 << 20
}

func (rt *Router) recordUpload(outcome string, size int64) {
	if rt.opts.Metrics != nil {
		rt.opts.Metrics.RecordUpload(serviceName, outcome, size)
	}
}

// SummaryFilename drops the first ".pdf" from name and appends "_summary.txt".
func SummaryFilename(name string) string {
	return strings.Replace(name, ".pdf", "", 1) + "_summary.txt"
}

func attachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}

func validateDocument(doc domain.Document) error {
	switch {
	case strings.TrimSpace(doc.ID) == "":
		return domain.WrapError(domain.ErrInvalidInput, "add document", errors.New("id is required"))
	case strings.TrimSpace(doc.Name) == "":
		return domain.WrapError(domain.ErrInvalidInput, "add document", errors.New("name is required"))
	case !doc.Status.Valid():
		return domain.WrapError(domain.ErrInvalidInput, "add document", fmt.Errorf("unknown status %q", doc.Status))
	}
	return nil
}
