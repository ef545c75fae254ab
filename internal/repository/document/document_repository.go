// File: internal/repository/document/document_repository.go
package document

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
)

var ErrDocumentNotFound = errors.New("document not found")

type gormDocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &gormDocumentRepository{db: db}
}

func (r *gormDocumentRepository) Create(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	if doc.UserID == 0 || doc.FileName == "" || doc.StoragePath == "" {
		return nil, errors.New("owner, file name and storage path are required")
	}

	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		log.Printf("[DocumentRepository] Database error creating document for user %d: %v", doc.UserID, err)
		return nil, errors.New("database error creating document")
	}
	return doc, nil
}

func (r *gormDocumentRepository) FindByID(ctx context.Context, id uint) (*domain.Document, error) {
	if id == 0 {
		return nil, errors.New("invalid document ID")
	}

	var doc domain.Document
	err := r.db.WithContext(ctx).First(&doc, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		log.Printf("[DocumentRepository] Database query error: %v", err)
		return nil, errors.New("database query failed")
	}
	return &doc, nil
}

func (r *gormDocumentRepository) IncrementRef(ctx context.Context, id uint) error {
	return r.bumpRef(ctx, id, "ref_count + 1", nil)
}

func (r *gormDocumentRepository) DecrementRef(ctx context.Context, id uint) error {
	// Floor at zero so a double delete cannot push the count negative.
	return r.bumpRef(ctx, id, "ref_count - 1", gorm.Expr("ref_count > 0"))
}

func (r *gormDocumentRepository) bumpRef(ctx context.Context, id uint, expr string, guard interface{}) error {
	if id == 0 {
		return errors.New("invalid document ID")
	}

	query := r.db.WithContext(ctx).Model(&domain.Document{}).Where("id = ?", id)
	if guard != nil {
		query = query.Where(guard)
	}
	result := query.Update("ref_count", gorm.Expr(expr))
	if result.Error != nil {
		log.Printf("[DocumentRepository] Database error adjusting ref count for document %d: %v", id, result.Error)
		return errors.New("database error updating document reference count")
	}
	return nil
}

func (r *gormDocumentRepository) FindCollectable(ctx context.Context, createdBefore time.Time) ([]domain.Document, error) {
	var docs []domain.Document
	err := r.db.WithContext(ctx).
		Where("ref_count <= 0 AND created_at < ?", createdBefore).
		Find(&docs).Error
	if err != nil {
		log.Printf("[DocumentRepository] Database error finding collectable documents: %v", err)
		return nil, errors.New("database error finding collectable documents")
	}
	return docs, nil
}

func (r *gormDocumentRepository) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return errors.New("invalid document ID")
	}

	result := r.db.WithContext(ctx).Delete(&domain.Document{}, id)
	if result.Error != nil {
		log.Printf("[DocumentRepository] Database error deleting document %d: %v", id, result.Error)
		return errors.New("database error deleting document")
	}
	if result.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
