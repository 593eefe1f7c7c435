package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/MaksymY11/mates-backend/internal/errors"
	"github.com/MaksymY11/mates-backend/pkg/storage"
)

var avatarTypes = []string{"image/jpeg", "image/png", "image/gif"}

func makePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newAvatarFixture(t *testing.T, maxBytes int64) (*AvatarService, *fakeUserStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewDiskStore(dir)
	require.NoError(t, err)

	users := newFakeUserStore()
	seedUser(t, users, "alice@x.com")

	svc := NewAvatarService(users, store, nil, maxBytes, avatarTypes, "https://cdn.example.com")
	return svc, users, dir
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestUploadAvatar(t *testing.T) {
	svc, users, dir := newAvatarFixture(t, 5<<20)

	body := makePNG(t, 64, 64)
	resp, err := svc.Upload(context.Background(), "alice@x.com", bytes.NewReader(body), "image/png", "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.AvatarURL, "https://cdn.example.com/static/avatars/"))
	assert.True(t, strings.HasSuffix(resp.AvatarURL, ".png"))
	assert.NotEmpty(t, resp.ThumbnailURL)

	user, err := users.GetByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, resp.AvatarURL, user.AvatarURL)
	assert.Equal(t, resp.ThumbnailURL, user.ThumbnailURL)

	names := dirEntries(t, dir)
	assert.Len(t, names, 2)
	for _, name := range names {
		assert.False(t, strings.HasSuffix(name, ".tmp"))
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	svc, _, dir := newAvatarFixture(t, 5<<20)

	_, err := svc.Upload(context.Background(), "alice@x.com", bytes.NewReader([]byte("x")), "application/pdf", "")
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedImageType)
	assert.Empty(t, dirEntries(t, dir))
}

func TestUploadRejectsUndecodableBody(t *testing.T) {
	svc, _, dir := newAvatarFixture(t, 5<<20)

	body := []byte("this is not an image at all")
	_, err := svc.Upload(context.Background(), "alice@x.com", bytes.NewReader(body), "image/png", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidImage)
	assert.Empty(t, dirEntries(t, dir))
}

func TestUploadRejectsOversizeStream(t *testing.T) {
	svc, _, dir := newAvatarFixture(t, 128)

	body := makePNG(t, 64, 64)
	require.Greater(t, len(body), 128)

	_, err := svc.Upload(context.Background(), "alice@x.com", bytes.NewReader(body), "image/png", "")
	assert.ErrorIs(t, err, apperrors.ErrImageTooLarge)
	assert.Empty(t, dirEntries(t, dir))
}

func TestUploadReplacesPreviousAvatar(t *testing.T) {
	svc, users, dir := newAvatarFixture(t, 5<<20)

	first, err := svc.Upload(context.Background(), "alice@x.com", bytes.NewReader(makePNG(t, 64, 64)), "image/png", "")
	require.NoError(t, err)

	second, err := svc.Upload(context.Background(), "alice@x.com", bytes.NewReader(makePNG(t, 32, 32)), "image/png", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.AvatarURL, second.AvatarURL)

	names := dirEntries(t, dir)
	assert.Len(t, names, 2)

	firstName, ok := storedFileName(first.AvatarURL)
	require.True(t, ok)
	assert.NotContains(t, names, firstName)

	user, err := users.GetByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, second.AvatarURL, user.AvatarURL)
}

func TestUploadRollsBackFilesOnStoreFailure(t *testing.T) {
	svc, users, dir := newAvatarFixture(t, 5<<20)
	users.failUpdateAvatar = true

	_, err := svc.Upload(context.Background(), "alice@x.com", bytes.NewReader(makePNG(t, 64, 64)), "image/png", "")
	assert.Error(t, err)
	assert.Empty(t, dirEntries(t, dir))
}

func TestUploadUnknownUserRemovesFiles(t *testing.T) {
	svc, _, dir := newAvatarFixture(t, 5<<20)

	_, err := svc.Upload(context.Background(), "ghost@x.com", bytes.NewReader(makePNG(t, 64, 64)), "image/png", "")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.Empty(t, dirEntries(t, dir))
}

func TestThumbnailFitsBoundingBox(t *testing.T) {
	svc, _, dir := newAvatarFixture(t, 5<<20)

	resp, err := svc.Upload(context.Background(), "alice@x.com", bytes.NewReader(makePNG(t, 600, 300)), "image/png", "")
	require.NoError(t, err)
	require.NotEmpty(t, resp.ThumbnailURL)

	thumbName, ok := storedFileName(resp.ThumbnailURL)
	require.True(t, ok)

	f, err := os.Open(dir + "/" + thumbName)
	require.NoError(t, err)
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 100, cfg.Height)
}

func TestUploadUsesOriginWhenNoBaseURL(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewDiskStore(dir)
	require.NoError(t, err)
	users := newFakeUserStore()
	seedUser(t, users, "alice@x.com")
	svc := NewAvatarService(users, store, nil, 5<<20, avatarTypes, "")

	resp, err := svc.Upload(context.Background(), "alice@x.com", bytes.NewReader(makePNG(t, 8, 8)), "image/png", "http://localhost:8080")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.AvatarURL, "http://localhost:8080/static/avatars/"))
}

func TestNormalizeContentType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "image/png", want: "image/png"},
		{in: "IMAGE/PNG", want: "image/png"},
		{in: "image/jpeg; charset=binary", want: "image/jpeg"},
		{in: "  image/gif  ", want: "image/gif"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeContentType(tt.in))
	}
}

func TestStoredFileName(t *testing.T) {
	name, ok := storedFileName("https://cdn.example.com/static/avatars/abc.png")
	require.True(t, ok)
	assert.Equal(t, "abc.png", name)

	_, ok = storedFileName("https://elsewhere.example.com/images/abc.png")
	assert.False(t, ok)

	_, ok = storedFileName("https://cdn.example.com/static/avatars/../../etc/passwd")
	assert.False(t, ok)

	_, ok = storedFileName("")
	assert.False(t, ok)
}
