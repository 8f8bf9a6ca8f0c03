package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"cmsapi/internal/model"
	"cmsapi/internal/repository"
	"cmsapi/internal/schema"
	"cmsapi/internal/storage"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("record not found")
	ErrReaderNil  = errors.New("reader is nil")
)

// Provider is recorded on every file row stored by this service.
const Provider = "minio"

// DefaultURLExpiry is used when the service is built with a zero expiry.
const DefaultURLExpiry = 15 * time.Minute

// UploadRef names the resource field an uploaded file is attached to.
type UploadRef struct {
	Resource string
	ID       uint
	Field    string
}

// UploadInput carries a streamed file and its optional attachment.
type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
	Ref         *UploadRef
}

// FileListQuery filters a file listing. RelatedType accepts a resource name
// or its table.
type FileListQuery struct {
	Limit       int
	Offset      int
	RelatedType string
	RelatedID   uint
	Field       string
}

// FileListResult is the service-level DTO for paginated files.
type FileListResult struct {
	Items []model.File `json:"data"`
	Total int          `json:"total"`
}

// UploadService defines the use cases of uploaded files.
type UploadService interface {
	// Upload streams the content to object storage, saves the file row and
	// links it to in.Ref when set. Storage is rolled back if the row cannot be saved.
	// The stored object name is a UUID plus the original extension.
	Upload(ctx context.Context, in UploadInput) (*model.File, error)

	// List returns files using limit/offset and a total count.
	List(ctx context.Context, q FileListQuery) (*FileListResult, error)

	// Get returns a file with a presigned download URL.
	Get(ctx context.Context, id uint) (*model.File, error)

	// Open streams the content of a file. The caller closes the reader.
	Open(ctx context.Context, id uint) (io.ReadCloser, *model.File, error)

	// Delete removes a file from both storage and repository.
	Delete(ctx context.Context, id uint) error
}

type uploadService struct {
	store     storage.Storage
	repo      repository.FileRepository
	urlExpiry time.Duration
}

// NewUploadService constructs a new UploadService.
func NewUploadService(store storage.Storage, repo repository.FileRepository, urlExpiry time.Duration) UploadService {
	if urlExpiry <= 0 {
		urlExpiry = DefaultURLExpiry
	}
	return &uploadService{store: store, repo: repo, urlExpiry: urlExpiry}
}

func (s *uploadService) Upload(ctx context.Context, in UploadInput) (*model.File, error) {
	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	var (
		link    *model.FileMorph
		replace bool
	)
	if in.Ref != nil {
		m, a, err := resolveRef(*in.Ref)
		if err != nil {
			return nil, err
		}
		link = &model.FileMorph{RelatedID: in.Ref.ID, RelatedType: m.Table, Field: a.Alias}
		replace = a.Nature.Singular()
	}

	ext := strings.ToLower(filepath.Ext(in.Filename))
	hash := strings.ReplaceAll(uuid.New().String(), "-", "")
	key := filepath.ToSlash(filepath.Join("uploads", hash+ext))

	contentType := in.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			contentType = byExt
		}
	}

	objInfo, err := s.store.Put(ctx, key, in.Reader, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": in.Filename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	f := &model.File{
		Name:        in.Filename,
		Hash:        hash,
		Ext:         ext,
		Mime:        contentType,
		Size:        objInfo.Size,
		Provider:    Provider,
		StoragePath: objInfo.Key,
	}
	stored, err := s.repo.Create(ctx, f)
	if err != nil {
		if delErr := s.store.Delete(ctx, objInfo.Key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	if link != nil {
		link.UploadFileID = stored.ID
		if err := s.repo.Link(ctx, link, replace); err != nil {
			// best effort cleanup, row before object
			_ = s.repo.Delete(ctx, stored.ID)
			_ = s.store.Delete(ctx, objInfo.Key)
			return nil, fmt.Errorf("link file: %w", err)
		}
		stored.Related = append(stored.Related, *link)
	}
	return stored, nil
}

// List returns paginated files without exposing repository types.
func (s *uploadService) List(ctx context.Context, q FileListQuery) (*FileListResult, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	relatedType := q.RelatedType
	if relatedType != "" {
		m, ok := model.Lookup(relatedType)
		if !ok {
			return nil, fmt.Errorf("%w: unknown resource %q", schema.ErrInvalidRelation, relatedType)
		}
		relatedType = m.Table
	}

	res, err := s.repo.List(ctx, repository.FileQuery{
		PageQuery:   repository.PageQuery{Limit: q.Limit, Offset: q.Offset},
		RelatedType: relatedType,
		RelatedID:   q.RelatedID,
		Field:       q.Field,
	})
	if err != nil {
		return nil, err
	}
	return &FileListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *uploadService) Get(ctx context.Context, id uint) (*model.File, error) {
	f, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	u, err := s.store.PresignGet(ctx, f.StoragePath, s.urlExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign %s: %w", f.StoragePath, err)
	}
	f.URL = u
	return f, nil
}

func (s *uploadService) Open(ctx context.Context, id uint) (io.ReadCloser, *model.File, error) {
	f, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, info, err := s.store.Get(ctx, f.StoragePath)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	if f.Mime == "" {
		f.Mime = info.ContentType
	}
	return rc, f, nil
}

// Delete removes the object first; if that fails the row is kept so the
// object stays reachable.
func (s *uploadService) Delete(ctx context.Context, id uint) error {
	f, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, f.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

func (s *uploadService) find(ctx context.Context, id uint) (*model.File, error) {
	if id == 0 {
		return nil, ErrIDRequired
	}
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return f, nil
}

func resolveRef(ref UploadRef) (*schema.Model, schema.Association, error) {
	m, ok := model.Lookup(ref.Resource)
	if !ok {
		return nil, schema.Association{}, fmt.Errorf("%w: unknown resource %q", schema.ErrInvalidRelation, ref.Resource)
	}
	a, ok := m.Association(ref.Field)
	if !ok || !a.Nature.Morph() {
		return nil, schema.Association{}, fmt.Errorf("%w: %s.%s does not accept files", schema.ErrInvalidRelation, m.Name, ref.Field)
	}
	if ref.ID == 0 {
		return nil, schema.Association{}, fmt.Errorf("%w: refId is required", schema.ErrInvalidRelation)
	}
	return m, a, nil
}
