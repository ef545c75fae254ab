// File: internal/domain/document.go
package domain

import "time"

// Document is a stored file that one or more messages reference. The
// reference count moves with message creation and deletion; a document only
// becomes eligible for garbage collection once nothing references it AND it
// has aged past the retention window, which tolerates in-flight sends that
// uploaded first and will attach shortly.
type Document struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"userId"`
	FileName    string    `gorm:"not null;size:255" json:"fileName"`
	FileType    MessageType `gorm:"not null;size:10" json:"fileType"`
	FileSize    int64     `json:"fileSize"`
	StoragePath string    `gorm:"not null;size:512" json:"-"`
	URL         string    `gorm:"size:512" json:"url"`
	RefCount    int       `gorm:"not null;default:0" json:"refCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Collectable reports whether the document may be garbage collected.
func (d *Document) Collectable(retention time.Duration, now time.Time) bool {
	return d.RefCount <= 0 && now.Sub(d.CreatedAt) > retention
}

// TypeFromContentType derives the message/document kind from a MIME type.
// Anything that is not an image, video or audio stream counts as a document.
func TypeFromContentType(contentType string) MessageType {
	switch {
	case len(contentType) >= 6 && contentType[:6] == "image/":
		return MessageTypeImage
	case len(contentType) >= 6 && contentType[:6] == "video/":
		return MessageTypeVideo
	case len(contentType) >= 6 && contentType[:6] == "audio/":
		return MessageTypeAudio
	default:
		return MessageTypeDocument
	}
}
