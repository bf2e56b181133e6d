package usecase

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"path"
	"strings"

	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

var imageFormats = map[string]imaging.Format{
	".jpg":  imaging.JPEG,
	".jpeg": imaging.JPEG,
	".png":  imaging.PNG,
	".gif":  imaging.GIF,
}

var formatContentTypes = map[imaging.Format]string{
	imaging.JPEG: "image/jpeg",
	imaging.PNG:  "image/png",
	imaging.GIF:  "image/gif",
}

// MediaService stores product images, scaling anything wider than maxWidth.
type MediaService struct {
	storage  ObjectStorage
	maxWidth int
	newID    func() string
}

func NewMediaService(storage ObjectStorage, maxWidth int) *MediaService {
	return &MediaService{storage: storage, maxWidth: maxWidth, newID: uuid.NewString}
}

// UploadProductImage decodes the image, downsizes it if needed and stores it
// under a random key. It returns the public URL.
func (s *MediaService) UploadProductImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	format, ok := imageFormats[ext]
	if !ok {
		return "", fmt.Errorf("%w: unsupported image type %q", domain.ErrUnsupportedMedia, ext)
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnsupportedMedia, err)
	}
	img = s.fit(img)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	key := fmt.Sprintf("products/%s%s", s.newID(), ext)
	url, err := s.storage.Upload(ctx, key, &buf, formatContentTypes[format], int64(buf.Len()))
	if err != nil {
		return "", err
	}
	return url, nil
}

func (s *MediaService) fit(img image.Image) image.Image {
	if s.maxWidth <= 0 || img.Bounds().Dx() <= s.maxWidth {
		return img
	}
	return imaging.Resize(img, s.maxWidth, 0, imaging.Lanczos)
}
