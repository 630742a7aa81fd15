package service

import (
	"context"
	"io"
)

// Folders objects are stored under.
const (
	FolderListingImages         = "listing-images"
	FolderTransactionProofs     = "transaction-proofs"
	FolderVerificationDocuments = "verification-documents"
)

// FileUploadService stores uploaded files and returns their URL.
type FileUploadService interface {
	UploadFile(ctx context.Context, file io.Reader, fileType, folder string, isPublic bool) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
	Close() error
}
