package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/bookers/internal/model"
	"github.com/d60-Lab/bookers/internal/repository"
	"github.com/d60-Lab/bookers/internal/testutil"
	"github.com/d60-Lab/bookers/pkg/storage"
)

// pngBytes PNG 文件头加上 n 字节填充
func pngBytes(n int) []byte {
	b := []byte("\x89PNG\r\n\x1a\n")
	return append(b, bytes.Repeat([]byte{0}, n)...)
}

func TestProfileImageService_DefaultSentinel(t *testing.T) {
	f := newFixture(t, false)
	u := testutil.CreateUser(t, f.db, "alice")

	got, err := f.images.ProfileImage(background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultProfileImage, got)
	assert.Equal(t, "no_image.jpg", got)

	_, err = f.images.ProfileImage(background(), "missing")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestProfileImageService_AttachReplaceRemove(t *testing.T) {
	f := newFixture(t, false)
	ctx := background()
	u := testutil.CreateUser(t, f.db, "alice")

	first, err := f.images.Attach(ctx, u.ID, "a.png", bytes.NewReader(pngBytes(100)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", first.ContentType)
	assert.Equal(t, int64(108), first.ByteSize)
	assert.True(t, strings.HasSuffix(first.Key, ".png"))

	url, err := f.images.ProfileImage(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "/blobs/"+first.Key, url)

	second, err := f.images.Attach(ctx, u.ID, "b.png", bytes.NewReader(pngBytes(10)))
	require.NoError(t, err)
	_, err = f.blobs.Open(first.Key)
	assert.ErrorIs(t, err, storage.ErrNotFound, "replaced blob must be deleted")
	bf, err := f.blobs.Open(second.Key)
	require.NoError(t, err)
	require.NoError(t, bf.Close())

	require.NoError(t, f.images.Remove(ctx, u.ID))
	_, err = f.blobs.Open(second.Key)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	url, err = f.images.ProfileImage(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultProfileImage, url)
	assert.ErrorIs(t, f.images.Remove(ctx, u.ID), repository.ErrAttachmentNotFound)
}

func TestProfileImageService_Rejects(t *testing.T) {
	f := newFixture(t, false)
	ctx := background()
	u := testutil.CreateUser(t, f.db, "alice")

	_, err := f.images.Attach(ctx, u.ID, "notes.txt", strings.NewReader("just some text"))
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = f.images.Attach(ctx, u.ID, "big.png", bytes.NewReader(pngBytes(MaxProfileImageSize)))
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, err = f.images.Attach(ctx, "missing", "a.png", bytes.NewReader(pngBytes(1)))
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	assert.Equal(t, int64(0), testutil.Count(t, f.db, &model.Attachment{}, ""))
}
