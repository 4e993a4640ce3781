package notes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"studynotes/internal/domain"
	"studynotes/internal/pkg/blobstore"
)

// MaxUploadSize is the hard per-upload limit, enforced at the transport
// boundary (router multipart memory + MaxBytesReader in the handler).
const MaxUploadSize = 16 << 20 // 16 MiB

// AllowedExtensions is the upload allow-list. Files without an extension are
// rejected.
var AllowedExtensions = map[string]bool{
	"txt":  true,
	"pdf":  true,
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"doc":  true,
	"docx": true,
}

const unreadablePlaceholder = "Unable to read file content"

// Service owns the note upload lifecycle: validation, blob write, record
// insert, and the compensating blob delete when the insert fails.
type Service struct {
	repo  NoteRepositoryInterface
	blobs BlobStore
}

func NewService(repo NoteRepositoryInterface, blobs BlobStore) *Service {
	return &Service{repo: repo, blobs: blobs}
}

// Ingest validates and stores an uploaded note. Validation order: unit
// association, file presence, extension allow-list. The blob is written
// first; if the record insert then fails the blob is removed so the store
// holds no orphan.
func (s *Service) Ingest(ctx context.Context, userID int64, req IngestRequest) (*domain.Note, error) {
	if req.UnitID == 0 {
		return nil, ErrMissingAssociation
	}
	if req.File == nil || req.File.Filename == "" {
		return nil, ErrNoFile
	}
	if !extensionAllowed(req.File.Filename) {
		return nil, ErrDisallowedType
	}

	src, err := req.File.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	storedName, absPath, err := s.blobs.Save(req.File.Filename, src)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	note := &domain.Note{
		UnitID:      req.UnitID,
		SubjectID:   req.SubjectID,
		Title:       req.Title,
		Description: req.Description,
		Filename:    storedName,
		FilePath:    absPath,
		FileType:    fileType(storedName),
	}

	if err := s.repo.Create(ctx, userID, note); err != nil {
		if rmErr := s.blobs.Remove(absPath); rmErr != nil {
			log.Printf("blob_rollback_failed path=%s error=%q", absPath, rmErr)
		}
		return nil, err
	}

	return note, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]*domain.NoteWithContext, error) {
	return s.repo.ListByUser(ctx, userID)
}

// View returns the note detail. For txt notes the file content is read best
// effort: a missing file yields no preview and a read failure yields a
// placeholder instead of failing the request.
func (s *Service) View(ctx context.Context, userID, id int64) (*NoteDetail, error) {
	note, err := s.repo.GetWithContext(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	detail := &NoteDetail{NoteWithContext: note}
	if note.FileType == "txt" {
		data, err := s.blobs.Retrieve(note.FilePath)
		switch {
		case err == nil:
			content := string(data)
			detail.Content = &content
		case errors.Is(err, blobstore.ErrFileNotFound):
			// no file, no preview
		default:
			placeholder := unreadablePlaceholder
			detail.Content = &placeholder
		}
	}
	return detail, nil
}

// Get returns the bare note record, used for downloads.
func (s *Service) Get(ctx context.Context, userID, id int64) (*domain.Note, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// Delete removes the record and then its file. The record goes first so a
// second delete of the same id reports not-found instead of re-running side
// effects.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	note, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	if err := s.blobs.Remove(note.FilePath); err != nil {
		log.Printf("blob_cleanup_failed path=%s error=%q", note.FilePath, err)
	}
	return nil
}

func extensionAllowed(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return false
	}
	return AllowedExtensions[strings.ToLower(filename[idx+1:])]
}

// fileType is the lowercased extension of the stored name, "unknown" when
// there is none.
func fileType(storedName string) string {
	idx := strings.LastIndex(storedName, ".")
	if idx < 0 || idx == len(storedName)-1 {
		return "unknown"
	}
	return strings.ToLower(storedName[idx+1:])
}
