package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forum-api/application/views"
	"forum-api/infrastructure/observability"
	"forum-api/interfaces/http/rest/handlers"
	"forum-api/pkg/auth"
	"forum-api/pkg/common"
)

type stubForum struct {
	handlers.Forum
}

func (stubForum) GetTopicByID(ctx context.Context, topicID string) (*views.TopicView, error) {
	return &views.TopicView{ID: topicID}, nil
}

func (stubForum) LikeComment(ctx context.Context, commentID string) (*views.CommentView, error) {
	userID, _ := common.GetUserID(ctx)
	return &views.CommentView{ID: commentID, Likes: []views.UserView{{ID: userID}}}, nil
}

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*auth.Claims, error) {
	if token != "good" {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}, nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func newRouter(ping error) *Router {
	return NewRouter(stubForum{}, nil, stubValidator{}, stubPinger{err: ping}, Options{
		RequestTimeout: time.Second,
		EnableCORS:     true,
		AllowedOrigins: []string{"https://forum.example"},
	}, zap.NewNop())
}

func serve(h http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	rec := serve(newRouter(nil).Setup(), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestRouter_Ready(t *testing.T) {
	assert.Equal(t, http.StatusOK, serve(newRouter(nil).Setup(), http.MethodGet, "/ready", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable,
		serve(newRouter(errors.New("no route to host")).Setup(), http.MethodGet, "/ready", nil).Code)
}

func TestRouter_RoutesV1(t *testing.T) {
	rec := serve(newRouter(nil).Setup(), http.MethodGet, "/api/v1/topics/t1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v1", rec.Header().Get("X-API-Version"))
	assert.Contains(t, rec.Body.String(), `"id":"t1"`)
}

func TestRouter_CallerFromBearerToken(t *testing.T) {
	rec := serve(newRouter(nil).Setup(), http.MethodPost, "/api/v1/comments/c1/likes",
		map[string]string{"Authorization": "Bearer good"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"likes":[{"id":"u1"`)
}

func TestRouter_UnknownRoute(t *testing.T) {
	rec := serve(newRouter(nil).Setup(), http.MethodGet, "/api/v1/nodes", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestRouter_CORSPreflight(t *testing.T) {
	rec := serve(newRouter(nil).Setup(), http.MethodOptions, "/api/v1/topics/t1", map[string]string{
		"Origin":                        "https://forum.example",
		"Access-Control-Request-Method": "PATCH",
	})

	assert.Equal(t, "https://forum.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Metrics(t *testing.T) {
	collector := observability.NewCollector("forum_test")
	h := newRouter(nil).WithMetrics(collector, collector.Handler()).Setup()
	serve(h, http.MethodGet, "/api/v1/topics/t1", nil)

	rec := serve(h, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), `route="/api/v1/topics/{topicID}"`), string(body))
}

func TestRouter_GraphQLMounted(t *testing.T) {
	gql := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	})
	h := newRouter(nil).WithGraphQL(gql).Setup()

	assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/graphql", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(h, http.MethodGet, "/graphql", nil).Code)
}
