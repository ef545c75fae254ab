package document

import (
	"context"
	"time"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
)

// DocumentRepository handles stored-file metadata and reference counting.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) (*domain.Document, error)
	FindByID(ctx context.Context, id uint) (*domain.Document, error)
	IncrementRef(ctx context.Context, id uint) error
	// DecrementRef never drives the count below zero.
	DecrementRef(ctx context.Context, id uint) error
	// FindCollectable lists unreferenced documents created before the cutoff.
	FindCollectable(ctx context.Context, createdBefore time.Time) ([]domain.Document, error)
	Delete(ctx context.Context, id uint) error
}
