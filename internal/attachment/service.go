// File: internal/attachment/service.go
package attachment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"crm_gateway_backend/internal/common"
	"crm_gateway_backend/internal/config"
	"crm_gateway_backend/internal/erp"
	"crm_gateway_backend/internal/notification"
	"crm_gateway_backend/internal/session"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// MaxFileSize is the upload ceiling enforced before any upstream request.
const MaxFileSize = 1 << 20 // 1 MB

// allowedExtensions maps permitted extensions to the MIME prefixes accepted
// for them. Every violated rule has its own user-facing message.
var allowedExtensions = map[string][]string{
	".png":  {"image/png"},
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".gif":  {"image/gif"},
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	".xls":  {"application/vnd.ms-excel"},
	".xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	".txt":  {"text/plain"},
	".csv":  {"text/csv", "application/csv", "text/plain"},
}

// Uploader is the slice of the ERP client the attachment workflow uses.
type Uploader interface {
	UploadFile(ctx context.Context, sess *session.Session, file erp.FileUpload) (json.RawMessage, error)
}

// Service validates and forwards file uploads.
type Service struct {
	cfg      *config.Config
	uploader Uploader
	toasts   *notification.Service
	logger   *zap.Logger
}

// NewService creates a new attachment service.
func NewService(cfg *config.Config, uploader Uploader, toasts *notification.Service, logger *zap.Logger) *Service {
	return &Service{cfg: cfg, uploader: uploader, toasts: toasts, logger: logger.Named("AttachmentService")}
}

// Validate applies the client-side rules: size ceiling first, then the
// extension and MIME allow-lists. It never reads the file content.
func Validate(header *multipart.FileHeader) error {
	if header == nil {
		return common.ErrBadRequest.WithDetails("No file was provided.")
	}
	if header.Size > MaxFileSize {
		return common.ErrBadRequest.WithDetails(
			fmt.Sprintf("File is too large (%.1f MB). The maximum allowed size is 1 MB.", float64(header.Size)/(1<<20)))
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	mimes, ok := allowedExtensions[ext]
	if !ok {
		return common.ErrBadRequest.WithDetails(
			fmt.Sprintf("Files of type %q are not allowed.", ext))
	}
	contentType := header.Header.Get("Content-Type")
	if contentType != "" {
		for _, allowed := range mimes {
			if strings.HasPrefix(contentType, allowed) {
				return nil
			}
		}
		return common.ErrBadRequest.WithDetails(
			fmt.Sprintf("The file's content type %q does not match its extension.", contentType))
	}
	return nil
}

// Upload validates the file and forwards it to the ERP, optionally linked to
// a document. A file that fails validation never produces an upstream call.
func (s *Service) Upload(ctx context.Context, sess *session.Session, key string, header *multipart.FileHeader, doctype, docname string) (*Attachment, error) {
	if err := Validate(header); err != nil {
		return nil, err
	}

	src, err := header.Open()
	if err != nil {
		s.logger.Error("Failed to open uploaded file", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not read the uploaded file.")
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, MaxFileSize+1))
	if err != nil {
		return nil, common.ErrInternalServer.WithDetails("Could not read the uploaded file.")
	}
	if len(content) > MaxFileSize {
		// Header.Size lied; re-check against the actual bytes.
		return nil, common.ErrBadRequest.WithDetails("File is too large. The maximum allowed size is 1 MB.")
	}

	fileName := sanitizeFileName(header.Filename)
	raw, err := s.uploader.UploadFile(ctx, sess, erp.FileUpload{
		FieldName: "file",
		FileName:  fileName,
		Content:   content,
		Doctype:   doctype,
		Docname:   docname,
	})
	if err != nil {
		return nil, err
	}

	var uploaded struct {
		Name    string `json:"name"`
		FileURL string `json:"file_url"`
	}
	_ = json.Unmarshal(raw, &uploaded)

	att := &Attachment{
		Name:     uploaded.Name,
		FileName: fileName,
		FileURL:  uploaded.FileURL,
		Doctype:  doctype,
		Docname:  docname,
	}
	s.toasts.Enqueue(key, notification.ToastSuccess, "File uploaded successfully.", s.cfg.SettingsToastTTL)
	s.logger.Info("Attachment uploaded", zap.String("file", fileName), zap.String("docname", docname))
	return att, nil
}

// sanitizeFileName slugs the base name while keeping the extension, so user
// supplied names cannot smuggle path characters to the ERP.
func sanitizeFileName(name string) string {
	base := filepath.Base(name)
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	slugged := slug.Make(stem)
	if slugged == "" {
		slugged = "file"
	}
	return slugged + ext
}
