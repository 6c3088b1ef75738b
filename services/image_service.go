package services

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/nocyshop/nocy-shop-api/config"
	"github.com/nocyshop/nocy-shop-api/utils"
	"go.uber.org/zap"
)

// ImageRole declares what an uploaded image is for; it selects the
// compression policy and destination folder.
type ImageRole string

const (
	RoleReference ImageRole = "reference" // customer-supplied reference images
	RoleProgress  ImageRole = "progress"  // admin progress photos
)

// compressionPolicy tunes the pipeline per image role. Files below the skip
// threshold are uploaded byte-identical; compression on small files is not
// worth the quality loss.
type compressionPolicy struct {
	MaxLongEdge     int
	Quality         int // initial JPEG quality, 1-100
	SkipThresholdKB int
	MaxSizeMB       int
	Folder          string
}

var compressionPolicies = map[ImageRole]compressionPolicy{
	RoleReference: {MaxLongEdge: 1600, Quality: 90, SkipThresholdKB: 500, MaxSizeMB: 2, Folder: "doll-references"},
	RoleProgress:  {MaxLongEdge: 1024, Quality: 75, SkipThresholdKB: 200, MaxSizeMB: 1, Folder: "progress-images"},
}

// ImageService compresses uploaded images per role and stores them in
// object storage, returning a durable public URL.
type ImageService interface {
	// UploadImage validates, compresses, and uploads an image file
	UploadImage(ctx context.Context, fileHeader *multipart.FileHeader, role ImageRole) (string, error)

	// DeleteImage removes a stored image by its public URL
	DeleteImage(ctx context.Context, imageURL string) error
}

// S3ImageService implements ImageService on top of S3 object storage
type S3ImageService struct {
	s3Service S3Interface
}

var imageServiceInstance ImageService

// InitImageService initializes the image service with an S3 backend
func InitImageService(s3Service S3Interface) ImageService {
	imageServiceInstance = &S3ImageService{
		s3Service: s3Service,
	}
	return imageServiceInstance
}

// GetImageService returns the initialized image service instance
func GetImageService() ImageService {
	return imageServiceInstance
}

// SetImageService sets the image service instance (primarily for testing)
func SetImageService(service ImageService) {
	imageServiceInstance = service
}

// ParseImageRole validates a role string from the request path.
func ParseImageRole(role string) (ImageRole, error) {
	switch ImageRole(role) {
	case RoleReference:
		return RoleReference, nil
	case RoleProgress:
		return RoleProgress, nil
	default:
		return "", fmt.Errorf("unknown image role %q", role)
	}
}

// UploadImage runs the pipeline: validate, compress per the role policy,
// upload. If compression fails the original bytes are uploaded instead;
// availability of the upload is prioritized over guaranteed size reduction.
func (s *S3ImageService) UploadImage(ctx context.Context, fileHeader *multipart.FileHeader, role ImageRole) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	policy, ok := compressionPolicies[role]
	if !ok {
		return "", fmt.Errorf("unknown image role %q", role)
	}

	original, err := utils.ReadMultipartFile(fileHeader)
	if err != nil {
		return "", err
	}

	content := original
	filename := filepath.Base(fileHeader.Filename)
	contentType := utils.ImageContentType(filename)

	if len(original) >= policy.SkipThresholdKB*1024 {
		compressed, err := compressImage(original, policy)
		if err != nil {
			// Fall back to the original file rather than failing the upload
			config.Logger().Warn("image compression failed, uploading original",
				zap.String("filename", filename),
				zap.Error(err))
		} else {
			content = compressed
			filename = replaceExt(filename, ".jpg")
			contentType = "image/jpeg"
		}
	}

	// Timestamp prefix gives uniqueness without a coordination step
	key := fmt.Sprintf("%s/%d-%s", policy.Folder, time.Now().UnixMilli(), filename)

	url, err := s.s3Service.UploadObject(ctx, key, content, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return url, nil
}

// DeleteImage deletes a stored image by its public URL
func (s *S3ImageService) DeleteImage(ctx context.Context, imageURL string) error {
	if imageURL == "" {
		return nil
	}

	if err := s.s3Service.DeleteObjectByURL(ctx, imageURL); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}

// compressImage resizes the image so its long edge fits the policy and
// re-encodes it as JPEG, stepping quality down until the result fits the
// policy's size ceiling.
func compressImage(content []byte, policy compressionPolicy) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(content), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > policy.MaxLongEdge || bounds.Dy() > policy.MaxLongEdge {
		if bounds.Dx() >= bounds.Dy() {
			img = imaging.Resize(img, policy.MaxLongEdge, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, policy.MaxLongEdge, imaging.Lanczos)
		}
	}

	maxBytes := policy.MaxSizeMB * 1024 * 1024
	quality := policy.Quality
	for {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}
		if buf.Len() <= maxBytes || quality <= 40 {
			return buf.Bytes(), nil
		}
		quality -= 10
	}
}

// replaceExt swaps the filename extension
func replaceExt(filename, ext string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ext
}
