package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/bookers/internal/model"
	"github.com/d60-Lab/bookers/internal/repository"
	"github.com/d60-Lab/bookers/pkg/storage"
)

func register(t *testing.T, f *fixture, name string) *model.User {
	t.Helper()
	u, err := f.users.Register(background(), RegisterInput{
		Name:     name,
		Email:    name + "@example.com",
		Password: "password",
	})
	require.NoError(t, err)
	return u
}

func TestUserService_Register(t *testing.T) {
	f := newFixture(t, false)
	ctx := background()

	u := register(t, f, "alice")
	assert.NotEmpty(t, u.ID)
	assert.NotEmpty(t, u.RememberToken)
	assert.NotEqual(t, "password", u.EncryptedPassword)

	_, err := f.users.Register(ctx, RegisterInput{Name: "alice", Email: "other@example.com", Password: "password"})
	assert.ErrorIs(t, err, repository.ErrNameTaken)

	_, err = f.users.Register(ctx, RegisterInput{Name: "bob", Email: "bob@example.com", Password: "123"})
	assert.ErrorIs(t, err, model.ErrInvalid)

	_, err = f.users.Register(ctx, RegisterInput{
		Name: "bob", Email: "bob@example.com", Password: "password",
		Introduction: strings.Repeat("x", 51),
	})
	assert.ErrorIs(t, err, model.ErrInvalid)
}

func TestUserService_Login(t *testing.T) {
	f := newFixture(t, false)
	ctx := background()
	u := register(t, f, "alice")

	token, got, err := f.users.Login(ctx, "ALICE@example.com", "password")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, u.ID, got.ID)

	_, _, err = f.users.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.users.Login(ctx, "nobody@example.com", "password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_UpdateProfile(t *testing.T) {
	f := newFixture(t, false)
	ctx := background()
	u := register(t, f, "alice")
	register(t, f, "bob")

	intro := "reads a lot"
	got, err := f.users.UpdateProfile(ctx, u.ID, UpdateProfileInput{Introduction: &intro})
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)
	assert.Equal(t, intro, got.Introduction)

	taken := "bob"
	_, err = f.users.UpdateProfile(ctx, u.ID, UpdateProfileInput{Name: &taken})
	assert.ErrorIs(t, err, repository.ErrNameTaken)

	long := strings.Repeat("y", 51)
	_, err = f.users.UpdateProfile(ctx, u.ID, UpdateProfileInput{Introduction: &long})
	assert.ErrorIs(t, err, model.ErrInvalid)
}

func TestUserService_SearchAndDelete(t *testing.T) {
	f := newFixture(t, false)
	ctx := background()
	alice := register(t, f, "alice")
	register(t, f, "malik")

	got, err := f.users.Search(ctx, "partial_match", "li")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = f.images.Attach(ctx, alice.ID, "me.png", bytes.NewReader(pngBytes(64)))
	require.NoError(t, err)
	att, err := repository.NewAttachmentRepository(f.db).GetByUser(ctx, alice.ID)
	require.NoError(t, err)

	require.NoError(t, f.users.Delete(ctx, alice.ID))
	_, err = f.users.Get(ctx, alice.ID)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = f.blobs.Open(att.Key)
	assert.ErrorIs(t, err, storage.ErrNotFound, "profile image blob must be removed with the user")
}
