package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/MaksymY11/mates-backend/internal/constants"
	"github.com/MaksymY11/mates-backend/internal/dto"
	apperrors "github.com/MaksymY11/mates-backend/internal/errors"
	ctxutil "github.com/MaksymY11/mates-backend/pkg/context"
	"github.com/MaksymY11/mates-backend/pkg/logger"
	"github.com/MaksymY11/mates-backend/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const thumbnailBound = 200

// AvatarService validates, persists and thumbnails uploaded avatar images.
// Every failure path removes whatever the pipeline has written so far; no
// exit leaves a temp file or an orphaned final file behind.
type AvatarService struct {
	users         UserStore
	files         FileStore
	cache         *ProfileCache
	maxBytes      int64
	allowedTypes  map[string]bool
	publicBaseURL string
}

func NewAvatarService(users UserStore, files FileStore, cache *ProfileCache, maxBytes int64, allowedTypes []string, publicBaseURL string) *AvatarService {
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[strings.ToLower(t)] = true
	}

	return &AvatarService{
		users:         users,
		files:         files,
		cache:         cache,
		maxBytes:      maxBytes,
		allowedTypes:  allowed,
		publicBaseURL: publicBaseURL,
	}
}

// Upload runs the full ingestion pipeline for one avatar image. origin is
// the request-derived scheme://host fallback used when no public base URL is
// configured.
func (s *AvatarService) Upload(ctx context.Context, email string, body io.Reader, declaredType, origin string) (*dto.AvatarResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "UploadAvatar")

	if !s.allowedTypes[normalizeContentType(declaredType)] {
		logger.InfoWithContext(ctx, "Avatar rejected: unsupported content type").
			String("email", email).
			String("content_type", declaredType).
			Log()
		return nil, apperrors.ErrUnsupportedImageType
	}

	tempPath, err := s.files.WriteTemp(ctx, body, s.maxBytes)
	if err != nil {
		if errors.Is(err, storage.ErrSizeExceeded) {
			logger.InfoWithContext(ctx, "Avatar rejected: stream exceeds size cap").
				String("email", email).
				Int64("max_bytes", s.maxBytes).
				Log()
			return nil, apperrors.ErrImageTooLarge
		}
		logger.ErrorWithContext(ctx, "Failed to buffer avatar upload").
			String("email", email).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// The declared type got the stream this far; the decoded structure is
	// what actually decides the format.
	format, err := s.detectFormat(tempPath)
	if err != nil {
		_ = s.files.RemovePath(tempPath)
		logger.InfoWithContext(ctx, "Avatar rejected: undecodable image").
			String("email", email).
			Err(err).
			Log()
		return nil, apperrors.ErrInvalidImage
	}

	finalName := uuid.NewString() + "." + extensionFor(format)
	if _, err := s.files.Promote(tempPath, finalName); err != nil {
		logger.ErrorWithContext(ctx, "Failed to finalize avatar file").
			String("email", email).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	thumbName := s.makeThumbnail(ctx, finalName, format)

	avatarURL := s.publicURL(origin, finalName)
	thumbnailURL := ""
	if thumbName != "" {
		thumbnailURL = s.publicURL(origin, thumbName)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.removeFiles(finalName, thumbName)
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to load user for avatar update").
			String("email", email).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	previousAvatar := user.AvatarURL
	previousThumbnail := user.ThumbnailURL

	if err := s.users.UpdateAvatar(ctx, email, avatarURL, thumbnailURL); err != nil {
		// The new files must not outlive a failed record update.
		s.removeFiles(finalName, thumbName)
		logger.ErrorWithContext(ctx, "Failed to store avatar URL, rolled back files").
			String("email", email).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.removePreviousAvatar(ctx, previousAvatar, previousThumbnail)

	if s.cache != nil {
		s.cache.Invalidate(ctx, email)
	}

	logger.InfoWithContext(ctx, "Avatar uploaded").
		String("email", email).
		String("file", finalName).
		String("format", format).
		Bool("has_thumbnail", thumbName != "").
		Log()

	return &dto.AvatarResponse{
		AvatarURL:    avatarURL,
		ThumbnailURL: thumbnailURL,
	}, nil
}

// detectFormat decodes the image header of the buffered upload and returns
// the registered format name.
func (s *AvatarService) detectFormat(tempPath string) (string, error) {
	f, err := s.files.Open(baseName(tempPath))
	if err != nil {
		return "", err
	}
	defer f.Close()

	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return "", fmt.Errorf("decode image header: %w", err)
	}
	return format, nil
}

// makeThumbnail renders a bounded-box thumbnail next to the final image and
// returns its name. Thumbnail failure is non-fatal: the pipeline continues
// without one.
func (s *AvatarService) makeThumbnail(ctx context.Context, finalName, format string) string {
	thumbName := "thumb_" + finalName

	src, err := s.decodeImage(finalName)
	if err != nil {
		logger.WarnWithContext(ctx, "Skipping thumbnail: full decode failed").
			String("file", finalName).
			Err(err).
			Log()
		return ""
	}

	scaled := scaleToBound(src, thumbnailBound)

	out, err := s.files.Create(thumbName)
	if err != nil {
		logger.WarnWithContext(ctx, "Skipping thumbnail: cannot create file").
			String("file", thumbName).
			Err(err).
			Log()
		return ""
	}

	encodeErr := encodeImage(out, scaled, format)
	closeErr := out.Close()
	if encodeErr != nil || closeErr != nil {
		_ = s.files.Remove(thumbName)
		logger.WarnWithContext(ctx, "Skipping thumbnail: encode failed").
			String("file", thumbName).
			Err(errors.Join(encodeErr, closeErr)).
			Log()
		return ""
	}

	return thumbName
}

func (s *AvatarService) decodeImage(name string) (image.Image, error) {
	f, err := s.files.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

func (s *AvatarService) publicURL(origin, name string) string {
	base := s.publicBaseURL
	if base == "" {
		base = origin
	}
	return strings.TrimRight(base, "/") + constants.AvatarURLPrefix + "/" + name
}

func (s *AvatarService) removeFiles(names ...string) {
	for _, name := range names {
		if name != "" {
			_ = s.files.Remove(name)
		}
	}
}

// removePreviousAvatar best-effort deletes the files a replaced avatar URL
// points at, but only when the URL resolves under this service's own avatar
// prefix. Failure is logged, never surfaced.
func (s *AvatarService) removePreviousAvatar(ctx context.Context, urls ...string) {
	for _, url := range urls {
		name, ok := storedFileName(url)
		if !ok {
			continue
		}
		if err := s.files.Remove(name); err != nil {
			logger.WarnWithContext(ctx, "Failed to delete previous avatar file").
				String("file", name).
				Err(err).
				Log()
		}
	}
}

// storedFileName extracts the stored filename from an avatar URL when the
// URL lives under our own storage prefix.
func storedFileName(url string) (string, bool) {
	idx := strings.Index(url, constants.AvatarURLPrefix+"/")
	if idx < 0 {
		return "", false
	}
	name := url[idx+len(constants.AvatarURLPrefix)+1:]
	if name == "" || strings.ContainsAny(name, "/?#") {
		return "", false
	}
	return name, true
}

func normalizeContentType(declared string) string {
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = declared[:i]
	}
	return strings.ToLower(strings.TrimSpace(declared))
}

// extensionFor maps a detected image format to its canonical extension. The
// client-supplied filename plays no part in naming.
func extensionFor(format string) string {
	switch format {
	case "jpeg":
		return "jpg"
	default:
		return format
	}
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// scaleToBound fits img into a bound x bound box preserving aspect ratio.
func scaleToBound(img image.Image, bound int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= bound && h <= bound {
		return img
	}

	if w >= h {
		h = h * bound / w
		w = bound
	} else {
		w = w * bound / h
		h = bound
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func encodeImage(w io.Writer, img image.Image, format string) error {
	switch format {
	case "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 85})
	case "png":
		return png.Encode(w, img)
	case "gif":
		return gif.Encode(w, img, nil)
	default:
		return fmt.Errorf("unsupported thumbnail format %q", format)
	}
}
