package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/church-console/backend/internal/crud"
	"github.com/church-console/backend/internal/httperr"
	"github.com/church-console/backend/internal/models"
	"github.com/church-console/backend/internal/store"
	"github.com/church-console/backend/pkg/response"
	"github.com/church-console/backend/pkg/storage"
)

// ObjectStore is the slice of the S3 client the media library needs.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, contentLength int64, publicRead bool) (string, error)
	GeneratePresignedUploadURL(ctx context.Context, bucket, key, contentType string, expires time.Duration) (string, error)
	DeleteMedia(ctx context.Context, key string) error
	MediaBucket() string
	PresignExpire() time.Duration
	PublicObjectURL(bucket, key string) string
}

// CreateRequest is the body for POST /media: a record for a file that is already hosted, or that
// was uploaded through a presigned URL.
type CreateRequest struct {
	Title      string  `json:"title" binding:"required,max=200"`
	Type       string  `json:"type" binding:"required,oneof=image video document"`
	URL        string  `json:"url" binding:"required,url"`
	Thumbnail  *string `json:"thumbnail" binding:"omitempty,url"`
	Size       int64   `json:"size" binding:"gte=0"`
	Category   string  `json:"category"`
	Folder     *string `json:"folder"`
	StorageKey *string `json:"storageKey"`
}

func (r CreateRequest) file() models.MediaFile {
	return models.MediaFile{
		Title:      r.Title,
		Type:       r.Type,
		URL:        r.URL,
		Thumbnail:  r.Thumbnail,
		Size:       r.Size,
		Category:   r.Category,
		Folder:     r.Folder,
		StorageKey: r.StorageKey,
	}
}

// UploadURLRequest is the body for POST /media/upload-url.
type UploadURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"contentType"`
	FileSize    int64  `json:"fileSize" binding:"required,gt=0"`
	Folder      string `json:"folder"`
}

// Handler handles media library endpoints.
type Handler struct {
	*crud.Handler[models.MediaFile]
	files   ObjectStore
	maxSize int64
	logger  *zap.Logger
}

// NewHandler creates a media handler. files may be nil when object storage is not configured; the
// upload endpoints then answer 503.
func NewHandler(st *store.Store, files ObjectStore, maxSize int64, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxSize <= 0 {
		maxSize = storage.DefaultMaxMediaSize
	}
	h := &Handler{
		Handler: crud.New(st.Media, models.MediaFileSchema, crud.BindJSON(CreateRequest.file), models.MediaFile.ValidateFields, logger),
		files:   files,
		maxSize: maxSize,
		logger:  logger,
	}
	h.OnDeleted = h.deleteObject
	return h
}

// Register mounts the media routes.
func (h *Handler) Register(rg *gin.RouterGroup, write ...gin.HandlerFunc) {
	rg.GET("/stats", h.Stats)
	h.Handler.Register(rg, write...)
	rg.POST("/upload", crud.Guarded(write, h.Upload)...)
	rg.POST("/upload-url", crud.Guarded(write, h.UploadURL)...)
}

// Upload handles POST /media/upload (multipart: file, title, category, folder). The object is
// stored first; the record is created once the upload succeeded.
func (h *Handler) Upload(c *gin.Context) {
	if h.files == nil {
		response.ServiceUnavailable(c, "object storage not configured")
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file (form field: file)")
		return
	}
	if file.Size > h.maxSize {
		response.TooLarge(c, fmt.Sprintf("file size exceeds %dMB limit", h.maxSize>>20))
		return
	}
	kind := storage.MediaTypeFor(file.Header.Get("Content-Type"), file.Filename)
	if kind == "" {
		response.BadRequest(c, "invalid file type: only images (jpg, png, gif), videos (mp4, mov, avi) and pdf documents allowed")
		return
	}
	contentType := file.Header.Get("Content-Type")
	if _, ok := storage.AllowedMediaTypes[contentType]; !ok {
		contentType = storage.ContentTypeForFilename(file.Filename)
	}

	folder := strings.TrimSpace(c.PostForm("folder"))
	key := storage.MediaKey(folder, file.Filename)
	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		title = strings.TrimSuffix(path.Base(file.Filename), path.Ext(file.Filename))
	}
	rec := models.MediaFile{
		Title:      title,
		Type:       kind,
		Size:       file.Size,
		Category:   c.PostForm("category"),
		StorageKey: &key,
	}
	if folder != "" {
		rec.Folder = &folder
	}
	if err := h.Validate(rec); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	rc, err := file.Open()
	if err != nil {
		h.logger.Error("open uploaded file failed", zap.Error(err))
		response.Internal(c, "failed to read file")
		return
	}
	defer rc.Close()

	url, err := h.files.Upload(c.Request.Context(), h.files.MediaBucket(), key, contentType, rc, file.Size, true)
	if err != nil {
		h.logger.Error("S3 upload failed", zap.Error(err), zap.String("key", key))
		response.ServiceUnavailable(c, "failed to upload file to storage")
		return
	}

	rec.URL = url
	created, err := h.Collection().Create(c.Request.Context(), rec)
	if err != nil {
		if delErr := h.files.DeleteMedia(c.Request.Context(), key); delErr != nil {
			h.logger.Warn("orphaned media object", zap.String("key", key), zap.Error(delErr))
		}
		httperr.Write(c, err)
		return
	}
	response.Created(c, created)
}

// UploadURL handles POST /media/upload-url: a presigned PUT for direct browser upload. The client
// then creates the record with POST /media.
func (h *Handler) UploadURL(c *gin.Context) {
	if h.files == nil {
		response.ServiceUnavailable(c, "object storage not configured")
		return
	}
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.FileSize > h.maxSize {
		response.TooLarge(c, fmt.Sprintf("file size exceeds %dMB limit", h.maxSize>>20))
		return
	}
	kind := storage.MediaTypeFor(req.ContentType, req.Filename)
	if kind == "" {
		response.BadRequest(c, "invalid file type")
		return
	}
	contentType := req.ContentType
	if _, ok := storage.AllowedMediaTypes[contentType]; !ok {
		contentType = storage.ContentTypeForFilename(req.Filename)
	}
	key := storage.MediaKey(req.Folder, req.Filename)
	expires := h.files.PresignExpire()
	url, err := h.files.GeneratePresignedUploadURL(c.Request.Context(), h.files.MediaBucket(), key, contentType, expires)
	if err != nil {
		h.logger.Error("presign upload failed", zap.Error(err), zap.String("key", key))
		response.ServiceUnavailable(c, "failed to generate upload url")
		return
	}
	response.OK(c, gin.H{
		"uploadUrl":   url,
		"storageKey":  key,
		"fileUrl":     h.files.PublicObjectURL(h.files.MediaBucket(), key),
		"contentType": contentType,
		"type":        kind,
		"expiresIn":   int(expires.Seconds()),
	})
}

// Stats handles GET /media/stats: file counts per kind.
func (h *Handler) Stats(c *gin.Context) {
	sn := store.Snapshot{MediaFiles: h.Collection().All()}
	response.OK(c, sn.MediaTypeCounts())
}

// deleteObject removes the stored object of a deleted record. Failures leave an orphan and are
// only logged.
func (h *Handler) deleteObject(c *gin.Context, deleted models.MediaFile) {
	if h.files == nil || deleted.StorageKey == nil || *deleted.StorageKey == "" {
		return
	}
	if err := h.files.DeleteMedia(c.Request.Context(), *deleted.StorageKey); err != nil {
		h.logger.Warn("delete media object failed", zap.String("key", *deleted.StorageKey), zap.String("id", deleted.ID), zap.Error(err))
	}
}
