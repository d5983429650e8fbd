package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/bookers/config"
	"github.com/d60-Lab/bookers/internal/api/handler"
	"github.com/d60-Lab/bookers/internal/repository"
	"github.com/d60-Lab/bookers/internal/service"
	"github.com/d60-Lab/bookers/internal/testutil"
	"github.com/d60-Lab/bookers/pkg/auth"
	"github.com/d60-Lab/bookers/pkg/storage"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	blobs := storage.NewMemory("/blobs")
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	userRepo := repository.NewUserRepository(db)
	attRepo := repository.NewAttachmentRepository(db)
	relations := service.NewRelationshipService(repository.NewRelationshipRepository(db), userRepo, nil)
	users := service.NewUserService(userRepo, attRepo, blobs, tokens)
	h := handler.NewHandler(
		users,
		relations,
		service.NewProfileImageService(userRepo, attRepo, blobs),
		service.NewBookService(
			userRepo,
			repository.NewBookRepository(db),
			repository.NewCommentRepository(db),
			repository.NewFavoriteRepository(db),
			repository.NewViewCountRepository(db),
			nil,
		),
		service.NewChatService(repository.NewRoomRepository(db), relations),
		blobs,
	)

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: gin.TestMode},
		Storage: config.StorageConfig{URLPrefix: "/blobs"},
	}
	return &testServer{t: t, router: NewRouter(cfg, h, tokens, users)}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var r *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(b)
	} else {
		r = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.serve(req)
}

func (s *testServer) serve(req *http.Request) (int, envelope) {
	s.t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

// signUp 注册并登录，返回用户 ID 与令牌
func (s *testServer) signUp(name string) (string, string) {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/v1/users", "", gin.H{
		"name": name, "email": name + "@example.com", "password": "password",
	})
	require.Equal(s.t, http.StatusCreated, code, env.Message)

	code, env = s.do(http.MethodPost, "/api/v1/sessions", "", gin.H{
		"email": name + "@example.com", "password": "password",
	})
	require.Equal(s.t, http.StatusOK, code, env.Message)
	var data struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	return data.User.ID, data.Token
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, env.Code)
}

func TestRouter_RegistrationValidation(t *testing.T) {
	s := newTestServer(t)
	s.signUp("alice")

	code, _ := s.do(http.MethodPost, "/api/v1/users", "", gin.H{
		"name": "alice", "email": "other@example.com", "password": "password",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(http.MethodPost, "/api/v1/users", "", gin.H{
		"name": "a", "email": "a@example.com", "password": "password",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = s.do(http.MethodPost, "/api/v1/users", "", gin.H{
		"name": "carol", "email": "carol@example.com", "password": "password",
		"introduction": strings.Repeat("x", 51),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = s.do(http.MethodPost, "/api/v1/sessions", "", gin.H{
		"email": "alice@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_FollowFlow(t *testing.T) {
	s := newTestServer(t)
	alice, aliceToken := s.signUp("alice")
	bob, _ := s.signUp("bob")

	code, _ := s.do(http.MethodPost, "/api/v1/users/"+bob+"/follow", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodPost, "/api/v1/users/"+bob+"/follow", aliceToken, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodPost, "/api/v1/users/"+bob+"/follow", aliceToken, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodPost, "/api/v1/users/"+alice+"/follow", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	var membership struct {
		Following bool `json:"following"`
	}
	_, env := s.do(http.MethodGet, "/api/v1/users/"+alice+"/following/"+bob, "", nil)
	decode(t, env, &membership)
	assert.True(t, membership.Following)

	var page struct {
		List []struct {
			ID string `json:"id"`
		} `json:"list"`
	}
	_, env = s.do(http.MethodGet, "/api/v1/users/"+bob+"/followers", "", nil)
	decode(t, env, &page)
	require.Len(t, page.List, 1)
	assert.Equal(t, alice, page.List[0].ID)

	var detail struct {
		Following bool `json:"following"`
		Stats     struct {
			Followers int64 `json:"followers"`
		} `json:"stats"`
	}
	code, env = s.do(http.MethodGet, "/api/v1/users/"+bob, aliceToken, nil)
	require.Equal(t, http.StatusOK, code)
	decode(t, env, &detail)
	assert.True(t, detail.Following)

	code, _ = s.do(http.MethodDelete, "/api/v1/users/"+bob+"/follow", aliceToken, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodDelete, "/api/v1/users/"+bob+"/follow", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, code)

	_, env = s.do(http.MethodGet, "/api/v1/users/"+alice+"/following/"+bob, "", nil)
	decode(t, env, &membership)
	assert.False(t, membership.Following)
}

func TestRouter_Search(t *testing.T) {
	s := newTestServer(t)
	for _, name := range []string{"Bob", "Bobby", "Rob", "alice"} {
		s.signUp(name)
	}

	names := func(query string) []string {
		_, env := s.do(http.MethodGet, "/api/v1/users?"+query, "", nil)
		var data struct {
			List []struct {
				Name string `json:"name"`
			} `json:"list"`
		}
		decode(t, env, &data)
		out := make([]string, 0, len(data.List))
		for _, u := range data.List {
			out = append(out, u.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Bob"}, names("search=perfect_match&word=Bob"))
	assert.ElementsMatch(t, []string{"Bob", "Bobby", "Rob"}, names("search=partial_match&word=ob"))
	assert.ElementsMatch(t, []string{"Bob", "Rob"}, names("search=backward_match&word=ob"))
	assert.Len(t, names("search=unknown&word=zzz"), 4)
}

func TestRouter_ProfileEdits(t *testing.T) {
	s := newTestServer(t)
	alice, aliceToken := s.signUp("alice")
	bob, _ := s.signUp("bob")

	code, env := s.do(http.MethodPatch, "/api/v1/users/"+alice, aliceToken, gin.H{"introduction": "hello"})
	require.Equal(t, http.StatusOK, code)
	var user struct {
		Name         string `json:"name"`
		Introduction string `json:"introduction"`
	}
	decode(t, env, &user)
	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, "hello", user.Introduction)

	code, _ = s.do(http.MethodPatch, "/api/v1/users/"+alice, aliceToken, gin.H{"name": "bob"})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(http.MethodPatch, "/api/v1/users/"+bob, aliceToken, gin.H{"introduction": "hi"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodDelete, "/api/v1/users/"+alice, aliceToken, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/api/v1/users/"+alice, "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	// 注销后旧令牌不能再写入数据
	code, _ = s.do(http.MethodPost, "/api/v1/users/"+bob+"/follow", aliceToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = s.do(http.MethodPost, "/api/v1/books", aliceToken, gin.H{"title": "Ghost", "body": "x"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_ProfileImage(t *testing.T) {
	s := newTestServer(t)
	alice, aliceToken := s.signUp("alice")

	var img struct {
		ProfileImage string `json:"profile_image"`
	}
	_, env := s.do(http.MethodGet, "/api/v1/users/"+alice+"/profile_image", "", nil)
	decode(t, env, &img)
	assert.Equal(t, "no_image.jpg", img.ProfileImage)

	upload := func(content []byte) (int, envelope) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("image", "me.png")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPut, "/api/v1/users/"+alice+"/profile_image", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+aliceToken)
		return s.serve(req)
	}

	code, _ := upload([]byte("just some text"))
	assert.Equal(t, http.StatusBadRequest, code)

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	code, env = upload(png)
	require.Equal(t, http.StatusOK, code, env.Message)
	decode(t, env, &img)
	assert.True(t, strings.HasPrefix(img.ProfileImage, "/blobs/profile_images/"+alice+"/"))

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, img.ProfileImage, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, png, w.Body.Bytes())

	code, _ = s.serve(httptest.NewRequest(http.MethodGet, "/blobs/profile_images/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, code)

	blobPath := img.ProfileImage
	code, env = s.do(http.MethodDelete, "/api/v1/users/"+alice+"/profile_image", aliceToken, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	_, env = s.do(http.MethodGet, "/api/v1/users/"+alice+"/profile_image", "", nil)
	decode(t, env, &img)
	assert.Equal(t, "no_image.jpg", img.ProfileImage)
	code, _ = s.serve(httptest.NewRequest(http.MethodGet, blobPath, nil))
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodDelete, "/api/v1/users/"+alice+"/profile_image", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRouter_BooksAndChats(t *testing.T) {
	s := newTestServer(t)
	alice, aliceToken := s.signUp("alice")
	bob, bobToken := s.signUp("bob")

	code, env := s.do(http.MethodPost, "/api/v1/books", aliceToken, gin.H{"title": "Go", "body": "concurrency"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var book struct {
		ID string `json:"id"`
	}
	decode(t, env, &book)

	code, _ = s.do(http.MethodPost, "/api/v1/books", aliceToken, gin.H{"title": "", "body": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = s.do(http.MethodPost, "/api/v1/books/"+book.ID+"/comments", bobToken, gin.H{"comment": "nice"})
	assert.Equal(t, http.StatusCreated, code)
	code, _ = s.do(http.MethodPost, "/api/v1/books/"+book.ID+"/favorite", bobToken, nil)
	assert.Equal(t, http.StatusOK, code)

	var detail service.BookDetail
	code, env = s.do(http.MethodGet, "/api/v1/books/"+book.ID, bobToken, nil)
	require.Equal(t, http.StatusOK, code)
	decode(t, env, &detail)
	assert.Len(t, detail.Comments, 1)
	assert.Equal(t, int64(1), detail.FavoriteCount)
	assert.Equal(t, int64(1), detail.ViewCount)
	assert.True(t, detail.Favorited)

	code, _ = s.do(http.MethodDelete, "/api/v1/books/"+book.ID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodPost, "/api/v1/rooms", aliceToken, gin.H{"user_id": bob})
	assert.Equal(t, http.StatusForbidden, code)

	s.do(http.MethodPost, "/api/v1/users/"+bob+"/follow", aliceToken, nil)
	s.do(http.MethodPost, "/api/v1/users/"+alice+"/follow", bobToken, nil)

	code, env = s.do(http.MethodPost, "/api/v1/rooms", aliceToken, gin.H{"user_id": bob})
	require.Equal(t, http.StatusOK, code, env.Message)
	var room struct {
		ID string `json:"id"`
	}
	decode(t, env, &room)

	code, _ = s.do(http.MethodPost, "/api/v1/rooms/"+room.ID+"/chats", bobToken, gin.H{"message": "hi alice"})
	assert.Equal(t, http.StatusCreated, code)

	var chats struct {
		List []struct {
			Message string `json:"message"`
		} `json:"list"`
	}
	_, env = s.do(http.MethodGet, "/api/v1/rooms/"+room.ID+"/chats", aliceToken, nil)
	decode(t, env, &chats)
	require.Len(t, chats.List, 1)
	assert.Equal(t, "hi alice", chats.List[0].Message)

	code, _ = s.do(http.MethodDelete, "/api/v1/books/"+book.ID, aliceToken, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/api/v1/books/"+book.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
