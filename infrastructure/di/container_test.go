package di

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forum-api/application/services"
	"forum-api/infrastructure/config"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, srv *httptest.Server, method, path, token, body string, out interface{}) int {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}

func data(t *testing.T, resp apiResponse, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, out), string(resp.Data))
}

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	cfg := config.Defaults()
	cfg.Environment = config.Test
	cfg.JWTSecret = "test-secret"
	cfg.QueryCacheTTLSeconds = 30

	container, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return container
}

func TestContainer_EndToEnd(t *testing.T) {
	container := newTestContainer(t)
	ctx := context.Background()

	seeded, err := container.Maintenance.RunJob(ctx, services.JobSeedCourses)
	require.NoError(t, err)
	require.Positive(t, seeded)

	srv := httptest.NewServer(container.Router.Setup())
	defer srv.Close()

	// register
	var resp apiResponse
	status := call(t, srv, http.MethodPost, "/api/v1/auth/register", "",
		`{"firstName":"Ada","lastName":"Lovelace","username":"ada","email":"ada@example.com","password":"secret123"}`, &resp)
	require.Equal(t, http.StatusCreated, status)
	var auth struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	data(t, resp, &auth)
	require.NotEmpty(t, auth.Token)

	// first course
	status = call(t, srv, http.MethodGet, "/api/v1/courses?first=1", "", "", &resp)
	require.Equal(t, http.StatusOK, status)
	var courses struct {
		Edges []struct {
			Node struct {
				ID string `json:"id"`
			} `json:"node"`
		} `json:"edges"`
		TotalCount int `json:"totalCount"`
	}
	data(t, resp, &courses)
	require.Len(t, courses.Edges, 1)
	assert.Equal(t, seeded, courses.TotalCount)
	courseID := courses.Edges[0].Node.ID

	// anonymous writes are rejected
	status = call(t, srv, http.MethodPost, "/api/v1/courses/"+courseID+"/topics", "",
		`{"title":"Closures","description":"How do they work?"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status = call(t, srv, http.MethodPost, "/api/v1/courses/"+courseID+"/topics", auth.Token,
		`{"title":"Closures","description":"How do they work?"}`, &resp)
	require.Equal(t, http.StatusCreated, status)
	var topic struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}
	data(t, resp, &topic)
	assert.Equal(t, "closures", topic.Slug)

	// comment and like it over GraphQL
	var gql struct {
		Data struct {
			CreateComment struct {
				ID string `json:"id"`
			} `json:"createComment"`
		} `json:"data"`
		Errors []json.RawMessage `json:"errors"`
	}
	body, err := json.Marshal(map[string]interface{}{
		"query":     `mutation($topic: ID!) { createComment(topicId: $topic, text: "Functions capturing variables") { id } }`,
		"variables": map[string]string{"topic": topic.ID},
	})
	require.NoError(t, err)
	status = call(t, srv, http.MethodPost, "/graphql", auth.Token, string(body), &gql)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, gql.Errors)
	commentID := gql.Data.CreateComment.ID
	require.NotEmpty(t, commentID)

	status = call(t, srv, http.MethodPost, "/api/v1/comments/"+commentID+"/likes", auth.Token, "", nil)
	require.Equal(t, http.StatusOK, status)
	status = call(t, srv, http.MethodPost, "/api/v1/comments/"+commentID+"/likes", auth.Token, "", nil)
	assert.Equal(t, http.StatusConflict, status)

	// counts are derived from the populated tree
	status = call(t, srv, http.MethodGet, "/api/v1/topics/"+topic.ID, "", "", &resp)
	require.Equal(t, http.StatusOK, status)
	var read struct {
		CommentCount int `json:"commentCount"`
		LikesCount   int `json:"likesCount"`
		CreatedBy    struct {
			ID string `json:"id"`
		} `json:"createdBy"`
	}
	data(t, resp, &read)
	assert.Equal(t, 1, read.CommentCount)
	assert.Equal(t, 1, read.LikesCount)
	assert.Equal(t, auth.User.ID, read.CreatedBy.ID)

	// metrics exposition
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/metrics", nil)
	require.NoError(t, err)
	metricsResp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	exposition, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(exposition), "forum_http_requests_total")
	assert.Contains(t, string(exposition), "forum_store_operation")
}

func TestContainer_QueryCacheDisabled(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	cfg := config.Defaults()
	cfg.JWTSecret = "test-secret"

	container, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, container.Cache)
	assert.NoError(t, container.Store.Ping(context.Background()))
}

func TestProvideJWTManager_RequiresSecretInProduction(t *testing.T) {
	cfg := config.Defaults()
	cfg.Environment = config.Production

	_, err := ProvideJWTManager(cfg, zap.NewNop())
	assert.Error(t, err)

	cfg.Environment = config.Development
	manager, err := ProvideJWTManager(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, manager)
}
