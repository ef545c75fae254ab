// File: internal/services/chat_services/document_service.go
package chat_services

import (
	"context"
	"io"
	"time"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/document"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services/blob"
)

const (
	documentFolder = "documents"
	signedURLTTL   = 15 * time.Minute
)

// DocumentService uploads attachments to object storage and sweeps the ones
// no message references anymore.
type DocumentService struct {
	documentRepo document.DocumentRepository
	store        blob.Store
	retention    time.Duration
	logger       Logger
}

func NewDocumentService(documentRepo document.DocumentRepository, store blob.Store, retention time.Duration, logger Logger) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		store:        store,
		retention:    retention,
		logger:       logger,
	}
}

// Upload stores the file and records it with a zero reference count. The
// count rises when a message is sent that points at it; until then the
// retention window keeps the sweeper off freshly uploaded files.
func (s *DocumentService) Upload(ctx context.Context, userID uint, r io.Reader, size int64, fileName, contentType string) (*domain.Document, error) {
	put, err := s.store.Put(ctx, r, size, fileName, contentType, documentFolder, userID)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		UserID:      userID,
		FileName:    fileName,
		FileType:    domain.TypeFromContentType(contentType),
		FileSize:    size,
		StoragePath: put.Path,
		URL:         put.URL,
	}
	if doc, err = s.documentRepo.Create(ctx, doc); err != nil {
		// The row is the source of truth; an orphaned object without one
		// would never be collected.
		if delErr := s.store.Delete(ctx, put.Path); delErr != nil {
			s.logger.Error("failed to clean up orphaned object", "path", put.Path, "error", delErr)
		}
		return nil, err
	}

	s.logger.Info("document uploaded", "document_id", doc.ID, "user_id", userID, "size", size)
	return doc, nil
}

// Get returns the document record.
func (s *DocumentService) Get(ctx context.Context, documentID uint) (*domain.Document, error) {
	return s.documentRepo.FindByID(ctx, documentID)
}

// SignedURL returns a short-lived download link for the stored object.
func (s *DocumentService) SignedURL(ctx context.Context, documentID uint) (string, error) {
	doc, err := s.documentRepo.FindByID(ctx, documentID)
	if err != nil {
		return "", err
	}
	return s.store.PresignedURL(ctx, doc.StoragePath, signedURLTTL)
}

// SweepOrphans deletes documents that are unreferenced and older than the
// retention window. Returns how many were collected.
func (s *DocumentService) SweepOrphans(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.retention)
	docs, err := s.documentRepo.FindCollectable(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	collected := 0
	for i := range docs {
		doc := &docs[i]
		if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
			s.logger.Error("failed to delete stored object", "document_id", doc.ID, "path", doc.StoragePath, "error", err)
			continue
		}
		if err := s.documentRepo.Delete(ctx, doc.ID); err != nil {
			s.logger.Error("failed to delete document record", "document_id", doc.ID, "error", err)
			continue
		}
		collected++
	}
	if collected > 0 {
		s.logger.Info("collected orphaned documents", "count", collected)
	}
	return collected, nil
}

// RunGC sweeps on the given interval until the context is cancelled.
func (s *DocumentService) RunGC(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOrphans(ctx); err != nil {
				s.logger.Error("document sweep failed", "error", err)
			}
		}
	}
}
