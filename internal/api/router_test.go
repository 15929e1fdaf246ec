package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/drink-tracker/config"
	"github.com/d60-Lab/drink-tracker/internal/api/handler"
	"github.com/d60-Lab/drink-tracker/internal/repository"
	"github.com/d60-Lab/drink-tracker/internal/service"
	"github.com/d60-Lab/drink-tracker/internal/testutil"
	"github.com/d60-Lab/drink-tracker/pkg/auth"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	users  service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	drinkRepo := repository.NewDrinkRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	users := service.NewUserService(db, userRepo, followRepo, nil, auth.NewBcryptHasher(bcrypt.MinCost), 100, 10)
	rel := service.NewRelationshipService(db, userRepo, followRepo, nil, 10)
	drinks := service.NewDrinkService(db, drinkRepo, service.NewFanout(followRepo, notifRepo))
	notifs := service.NewNotificationService(notifRepo)
	tokens := auth.NewTokenIssuer("test-secret", time.Hour, "drink-tracker")

	cfg := &config.Config{Tracing: config.TracingConfig{ServiceName: "test"}}
	r, err := SetupRouter(cfg, handler.NewHandler(users, rel, drinks, notifs, tokens), tokens, users)
	require.NoError(t, err)
	return &testServer{t: t, router: r, users: users}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

// signup registers a user and returns (id, token).
func (s *testServer) signup(username string) (uint, string) {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/auth/register", "", map[string]string{
		"username": username, "first_name": username, "last_name": "Test", "password": "secret-pw",
	})
	require.Equal(s.t, http.StatusCreated, code, env.Message)
	var u struct {
		ID uint `json:"id"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &u))

	code, env = s.do(http.MethodPost, "/auth/token", "", map[string]string{"username": username, "password": "secret-pw"})
	require.Equal(s.t, http.StatusOK, code, env.Message)
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &tok))
	return u.ID, tok.AccessToken
}

func TestDrinkNotificationFlow(t *testing.T) {
	s := newTestServer(t)
	_, tokenA := s.signup("A")
	idB, tokenB := s.signup("B")

	code, env := s.do(http.MethodPost, "/users/me/following", tokenA, map[string]string{"username": "B"})
	require.Equal(t, http.StatusOK, code, env.Message)
	var me struct {
		Username  string `json:"username"`
		Following []struct {
			Username string `json:"username"`
		} `json:"following"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "A", me.Username)
	require.Len(t, me.Following, 1)
	assert.Equal(t, "B", me.Following[0].Username)

	code, env = s.do(http.MethodPost, "/drinking/", tokenB, map[string]int{"glasses": 3})
	require.Equal(t, http.StatusOK, code, env.Message)
	var drink struct {
		UserID   uint      `json:"user_id"`
		Glasses  int       `json:"glasses"`
		Datetime time.Time `json:"datetime"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &drink))
	assert.Equal(t, idB, drink.UserID)
	assert.Equal(t, 3, drink.Glasses)

	code, env = s.do(http.MethodGet, "/drinking/notifications", tokenA, nil)
	require.Equal(t, http.StatusOK, code)
	var feed []struct {
		User struct {
			ID       uint   `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
		Glasses  int       `json:"glasses"`
		Datetime time.Time `json:"datetime"`
		Received *bool     `json:"received"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &feed))
	require.Len(t, feed, 1)
	assert.Equal(t, idB, feed[0].User.ID)
	assert.Equal(t, "B", feed[0].User.Username)
	assert.Equal(t, 3, feed[0].Glasses)
	assert.True(t, drink.Datetime.Equal(feed[0].Datetime))
	assert.Nil(t, feed[0].Received, "received flag is not part of the feed")

	code, env = s.do(http.MethodGet, "/drinking/", tokenB, nil)
	require.Equal(t, http.StatusOK, code)
	var mine []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 1)
	assert.NotContains(t, mine[0], "user_id", "simple view")

	code, env = s.do(http.MethodGet, "/drinking/notifications/unseen", tokenA, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"unseen":1}`, string(env.Data))

	code, env = s.do(http.MethodPost, "/drinking/notifications/received", tokenA, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"updated":1}`, string(env.Data))
}

func TestFollowErrors(t *testing.T) {
	s := newTestServer(t)
	_, tokenA := s.signup("alice")
	idB, _ := s.signup("bob")
	followPath := fmt.Sprintf("/users/%d/follow", idB)

	code, env := s.do(http.MethodPost, followPath, tokenA, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "true", string(env.Data))

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		reason string
	}{
		{"follow twice", http.MethodPost, followPath, nil, "Already following"},
		{"follow missing id", http.MethodPost, "/users/999/follow", nil, "Id not found"},
		{"unfollow missing id", http.MethodDelete, "/users/999/follow", nil, "Id not found"},
		{"follow missing username", http.MethodPost, "/users/me/following", map[string]string{"username": "ghost"}, "Username not found"},
		{"unfollow missing username", http.MethodDelete, "/users/me/following/ghost", nil, "Username not found"},
		{"bad page", http.MethodGet, "/users/?page=-1", nil, "Page number not allowed"},
		{"page past end", http.MethodGet, "/users/?page=5&limit=1", nil, "Page number not allowed"},
		{"zero glasses", http.MethodPost, "/drinking/", map[string]int{"glasses": 0}, "Glasses must be a positive number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(tt.method, tt.path, tokenA, tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, tt.reason, env.Message)
		})
	}

	code, _ = s.do(http.MethodDelete, followPath, tokenA, nil)
	require.Equal(t, http.StatusOK, code)
	code, env = s.do(http.MethodDelete, followPath, tokenA, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Not following", env.Message)
}

func TestRegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
	s := newTestServer(t)

	// 40 个字符，80 字节
	code, env := s.do(http.MethodPost, "/auth/register", "", map[string]string{
		"username": "amelie", "password": strings.Repeat("é", 40),
	})
	assert.Equal(t, http.StatusBadRequest, code, env.Message)

	code, env = s.do(http.MethodPost, "/auth/register", "", map[string]string{
		"username": "amelie", "password": strings.Repeat("é", 36),
	})
	assert.Equal(t, http.StatusCreated, code, env.Message)
}

func TestUnknownRouteEnvelope(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, http.StatusNotFound, env.Code)
	assert.Equal(t, "Not found", env.Message)
}

func TestListUsersEnvelope(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup("alice")
	s.signup("bob")

	code, env := s.do(http.MethodGet, "/users/?page=1&limit=1", token, nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Total   int64             `json:"total"`
		Results []json.RawMessage `json:"results"`
		MaxPage int64             `json:"max_page"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Results, 1)
	assert.Equal(t, int64(2), page.MaxPage)
	assert.NotContains(t, string(env.Data), "hashed_password")
}

func TestAuthAndAdminGuards(t *testing.T) {
	s := newTestServer(t)
	idA, tokenA := s.signup("alice")

	code, _ := s.do(http.MethodGet, "/drinking/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodGet, "/drinking/", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodPost, "/auth/token", "", map[string]string{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodDelete, fmt.Sprintf("/users/%d", idA), tokenA, nil)
	assert.Equal(t, http.StatusForbidden, code)

	_, err := s.users.CreateAdminUser(context.Background(), service.UserCreate{Username: "root", Password: "secret-pw"})
	require.NoError(t, err)
	code, env := s.do(http.MethodPost, "/auth/token", "", map[string]string{"username": "root", "password": "secret-pw"})
	require.Equal(t, http.StatusOK, code)
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tok))

	code, env = s.do(http.MethodPatch, "/users/999", tok.AccessToken, map[string]bool{"is_admin": true})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Id not found", env.Message)

	code, env = s.do(http.MethodPatch, fmt.Sprintf("/users/%d", idA), tok.AccessToken, map[string]bool{"is_admin": true})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"is_admin":true`)

	code, env = s.do(http.MethodDelete, "/users/999", tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "true", string(env.Data))

	code, _ = s.do(http.MethodDelete, fmt.Sprintf("/users/%d", idA), tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/drinking/", tokenA, nil)
	assert.Equal(t, http.StatusUnauthorized, code, "token of a deleted user is rejected")
}
