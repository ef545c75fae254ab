// File: internal/handlers/document_handler.go
package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/middleware"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/document"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services/chat_services"
)

// maxUploadSize caps attachment uploads at 50 MB.
const maxUploadSize = 50 << 20

type DocumentHandler struct {
	documentService *chat_services.DocumentService
}

func NewDocumentHandler(ds *chat_services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: ds}
}

// Upload accepts a multipart file and stores it. The returned document ID is
// what a later message references.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, "A file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc, err := h.documentService.Upload(r.Context(), userID, file, header.Size, header.Filename, contentType)
	if err != nil {
		log.Printf("[DocumentHandler] Upload failed: %v", err)
		writeError(w, "Could not store file", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// Download redirects to a short-lived signed URL for the stored object.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	documentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	url, err := h.documentService.SignedURL(r.Context(), documentID)
	if err != nil {
		if errors.Is(err, document.ErrDocumentNotFound) {
			writeError(w, "Document not found", http.StatusNotFound)
			return
		}
		log.Printf("[DocumentHandler] Signing failed: %v", err)
		writeError(w, "Could not generate download link", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}
