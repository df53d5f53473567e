package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/krakosik/symposium/internal/client"
	"github.com/krakosik/symposium/internal/dto"
	"github.com/sirupsen/logrus"
)

const MaxUploadSize int64 = 100 << 20

var allowedUploadExtensions = []string{
	".pdf", ".doc", ".docx", ".ppt", ".pptx",
	".mp4", ".avi", ".mov", ".wmv", ".webm", ".mkv", ".m4v",
}

var allowedUploadMimeTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"video/mp4",
	"video/x-msvideo",
	"video/quicktime",
	"video/x-ms-wmv",
	"video/webm",
	"video/x-matroska",
	"video/mp2t",
}

type UploadService interface {
	Store(ctx context.Context, fileName, contentType string, size int64, content io.Reader) (dto.UploadResponse, error)
}

type uploadService struct {
	fileStore client.FileStore
	now       func() time.Time
}

func newUploadService(fileStore client.FileStore) UploadService {
	return &uploadService{
		fileStore: fileStore,
		now:       time.Now,
	}
}

func (u *uploadService) Store(ctx context.Context, fileName, contentType string, size int64, content io.Reader) (dto.UploadResponse, error) {
	baseName := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if baseName == "" || baseName == "." || baseName == "/" {
		return dto.UploadResponse{}, fmt.Errorf("%w: no file uploaded", dto.ErrInvalidRequest)
	}
	if size > MaxUploadSize {
		return dto.UploadResponse{}, fmt.Errorf("%w: file size exceeds %dMB limit", dto.ErrInvalidRequest, MaxUploadSize>>20)
	}
	if !isAllowedUpload(baseName, contentType) {
		return dto.UploadResponse{}, fmt.Errorf("%w: invalid file type, allowed types: PDF, DOC, DOCX, PPT, PPTX, MP4, AVI, MOV, WMV, WEBM, MKV, M4V", dto.ErrInvalidRequest)
	}

	storedName := fmt.Sprintf("%d-%s", u.now().UnixMilli(), baseName)
	fileURL, err := u.fileStore.Save(ctx, storedName, contentType, io.LimitReader(content, MaxUploadSize))
	if err != nil {
		return dto.UploadResponse{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, err)
	}

	logrus.Infof("Stored upload %s (%d bytes)", storedName, size)
	return dto.UploadResponse{
		Message:  "File uploaded successfully",
		FileURL:  fileURL,
		FileName: baseName,
		FileSize: size,
	}, nil
}

func isAllowedUpload(fileName, contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	return slices.Contains(allowedUploadExtensions, ext) && slices.Contains(allowedUploadMimeTypes, mediaType)
}
