package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"likeboard/internal/auth"
	apperrors "likeboard/internal/errors"
	"likeboard/internal/handler"
	"likeboard/internal/logger"
	"likeboard/internal/model"
	"likeboard/internal/router"
	"likeboard/internal/service"
)

const testSecret = "handler-test-secret"

// memoryRepo is an in-memory repository.UserRepository.
type memoryRepo struct {
	mu     sync.Mutex
	hasher *auth.PasswordHasher
	users  map[uuid.UUID]*model.User
}

func newMemoryRepo(hasher *auth.PasswordHasher) *memoryRepo {
	return &memoryRepo{hasher: hasher, users: map[uuid.UUID]*model.User{}}
}

func (r *memoryRepo) Create(_ context.Context, username, password string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return nil, apperrors.ErrUserExists
		}
	}
	hash, err := r.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := &model.User{ID: uuid.New(), Username: username, PasswordHash: hash, Likes: model.Likes{}}
	r.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (r *memoryRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.ErrUserNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[parsed]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memoryRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryRepo) List(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, *u)
	}
	return users, nil
}

func (r *memoryRepo) UpdateLikes(_ context.Context, id string, likes model.Likes) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[uuid.MustParse(id)]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Likes = append(model.Likes{}, likes...)
	return nil
}

func (r *memoryRepo) UpdatePassword(_ context.Context, id, password string) error {
	hash, err := r.hasher.Hash(password)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[uuid.MustParse(id)]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

type testServer struct {
	e      *echo.Echo
	tokens *auth.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.Discard()
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	tokens := auth.NewTokenService(testSecret, time.Hour)
	svc := service.NewUserService(newMemoryRepo(hasher), tokens, hasher, nil, log, service.Options{})

	e := echo.New()
	router.Register(e, log, tokens, handler.NewUserHandler(svc))
	return &testServer{e: e, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) signup(t *testing.T, username, password string) model.UserAuth {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/signup", `{"username":"`+username+`","password":"`+password+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res model.UserAuth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func (s *testServer) getUser(t *testing.T, id string) model.UserPublic {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/user/"+id, "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res model.UserPublic
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestSignup(t *testing.T) {
	s := newTestServer(t)

	alice := s.signup(t, "alice", "pw1")
	assert.Equal(t, "alice", alice.Username)
	_, err := uuid.Parse(alice.ID)
	assert.NoError(t, err)
	userID, err := s.tokens.Verify(alice.Token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, userID)

	tests := []struct {
		name            string
		body            string
		expectedStatus  int
		expectedMessage string
	}{
		{"duplicate username", `{"username":"alice","password":"pw2"}`, http.StatusConflict, "User with that username already exists."},
		{"missing password", `{"username":"bob"}`, http.StatusBadRequest, "User should provide username and password."},
		{"missing username", `{"password":"pw"}`, http.StatusBadRequest, "User should provide username and password."},
		{"empty values", `{"username":"","password":""}`, http.StatusBadRequest, "User should provide username and password."},
		{"malformed body", `{"username":`, http.StatusBadRequest, "User should provide username and password."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/signup", tt.body, "")
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedMessage, messageOf(t, rec))
		})
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice", "pw1")

	rec := s.do(t, http.MethodPost, "/login", `{"username":"alice","password":"pw1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res model.UserAuth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, alice.ID, res.ID)
	assert.Equal(t, "alice", res.Username)
	userID, err := s.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, userID)

	tests := []struct {
		name            string
		body            string
		expectedStatus  int
		expectedMessage string
	}{
		{"wrong password", `{"username":"alice","password":"nope"}`, http.StatusUnauthorized, "Username and password mismatch."},
		{"unknown user", `{"username":"ghost","password":"pw1"}`, http.StatusNotFound, "User not found."},
		{"missing password", `{"username":"alice"}`, http.StatusBadRequest, "User should provide username and password."},
		{"wrong field type", `{"username":1,"password":"pw1"}`, http.StatusBadRequest, "User should provide username and password."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/login", tt.body, "")
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedMessage, messageOf(t, rec))
		})
	}
}

func TestMe(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice", "pw1")

	rec := s.do(t, http.MethodGet, "/me", "", alice.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var me model.UserPublic
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, model.UserPublic{ID: alice.ID, Username: "alice", Likes: 0}, me)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(t, http.MethodGet, "/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User should provide token.", messageOf(t, rec))

	rec = s.do(t, http.MethodGet, "/me", "", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token is not valid.", messageOf(t, rec))

	expired, err := auth.NewTokenService(testSecret, -time.Minute).Issue(alice.ID)
	require.NoError(t, err)
	rec = s.do(t, http.MethodGet, "/me", "", expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token is not valid.", messageOf(t, rec))

	// valid signature for a user that never existed
	ghost, err := s.tokens.Issue(uuid.NewString())
	require.NoError(t, err)
	rec = s.do(t, http.MethodGet, "/me", "", ghost)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetUser(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice", "pw1")

	assert.Equal(t, model.UserPublic{ID: alice.ID, Username: "alice"}, s.getUser(t, alice.ID))

	for _, id := range []string{uuid.NewString(), "userId"} {
		rec := s.do(t, http.MethodGet, "/user/"+id, "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "User not found.", messageOf(t, rec))
	}
}

func TestLikeAndUnlike(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice", "pw1")
	bob := s.signup(t, "bob", "pw2")

	rec := s.do(t, http.MethodPut, "/user/"+bob.ID+"/like", "", alice.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, 1, s.getUser(t, bob.ID).Likes)

	// liking twice keeps a single like
	rec = s.do(t, http.MethodPut, "/user/"+bob.ID+"/like", "", alice.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, s.getUser(t, bob.ID).Likes)

	rec = s.do(t, http.MethodPut, "/user/"+bob.ID+"/unlike", "", alice.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, s.getUser(t, bob.ID).Likes)

	rec = s.do(t, http.MethodPut, "/user/"+bob.ID+"/unlike", "", alice.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, s.getUser(t, bob.ID).Likes)

	rec = s.do(t, http.MethodPut, "/user/userId/like", "", alice.Token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found.", messageOf(t, rec))

	rec = s.do(t, http.MethodPut, "/user/"+bob.ID+"/like", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User should provide token.", messageOf(t, rec))
	assert.Equal(t, 0, s.getUser(t, bob.ID).Likes)
}

func TestMostLiked(t *testing.T) {
	s := newTestServer(t)
	a := s.signup(t, "a", "pw")
	b := s.signup(t, "b", "pw")
	c := s.signup(t, "c", "pw")

	for _, liker := range []model.UserAuth{a, b} {
		rec := s.do(t, http.MethodPut, "/user/"+c.ID+"/like", "", liker.Token)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := s.do(t, http.MethodPut, "/user/"+a.ID+"/like", "", c.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/most-liked", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var board handler.MostLikedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))

	require.Len(t, board.Users, 3)
	assert.Equal(t, []model.UserPublic{
		{ID: c.ID, Username: "c", Likes: 2},
		{ID: a.ID, Username: "a", Likes: 1},
		{ID: b.ID, Username: "b", Likes: 0},
	}, board.Users)
}

func TestMostLiked_Empty(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/most-liked", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"users":[]}`, rec.Body.String())
}

func TestUpdatePassword(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice", "pw1")

	for _, body := range []string{`{}`, `{"password":5}`, `{"password":`} {
		rec := s.do(t, http.MethodPut, "/me/update-password", body, alice.Token)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "User should provide password.", messageOf(t, rec), body)
	}

	rec := s.do(t, http.MethodPost, "/login", `{"username":"alice","password":"pw1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/me/update-password", `{"password":"pw2"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPut, "/me/update-password", `{"password":"pw2"}`, alice.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/login", `{"username":"alice","password":"pw1"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Username and password mismatch.", messageOf(t, rec))

	rec = s.do(t, http.MethodPost, "/login", `{"username":"alice","password":"pw2"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// tokens issued before the change stay valid until they expire
	rec = s.do(t, http.MethodGet, "/me", "", alice.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthzAndDocsRedirect(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = s.do(t, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/api-docs/index.html", rec.Header().Get(echo.HeaderLocation))
}
