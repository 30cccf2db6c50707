package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitcms/pkg/models"
	"gitcms/pkg/services"
	"gitcms/pkg/store"
)

// memStore is a minimal in-memory ContentStore for driving the API.
type memStore struct {
	files map[string]memFile
	seq   int
}

type memFile struct {
	content  []byte
	revision string
}

func newMemStore() *memStore {
	return &memStore{files: make(map[string]memFile)}
}

func (m *memStore) CheckAccess(ctx context.Context) error { return nil }

func (m *memStore) ReadDocument(ctx context.Context, path string) (json.RawMessage, string, error) {
	f, ok := m.files[path]
	if !ok {
		return nil, "", store.ErrNotFound
	}
	return f.content, f.revision, nil
}

func (m *memStore) WriteDocument(ctx context.Context, path string, body []byte, expectedRevision, message string) (string, error) {
	if current, ok := m.files[path]; ok && current.revision != expectedRevision {
		return "", store.ErrConflict
	}
	m.seq++
	rev := fmt.Sprintf("rev-%d", m.seq)
	m.files[path] = memFile{content: body, revision: rev}
	return rev, nil
}

func (m *memStore) ListDirectory(ctx context.Context, dir string) ([]models.ImageAsset, error) {
	var out []models.ImageAsset
	for path, f := range m.files {
		if strings.HasPrefix(path, dir+"/") {
			out = append(out, models.ImageAsset{Path: path, Name: strings.TrimPrefix(path, dir+"/"), Revision: f.revision})
		}
	}
	return out, nil
}

func (m *memStore) DeleteDocument(ctx context.Context, path, expectedRevision, message string) error {
	current, ok := m.files[path]
	if !ok {
		return store.ErrNotFound
	}
	if current.revision != expectedRevision {
		return store.ErrConflict
	}
	delete(m.files, path)
	return nil
}

type testApp struct {
	router  *gin.Engine
	store   *memStore
	cookies []*http.Cookie
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ms := newMemStore()
	manager := services.NewSessionManager()
	manager.NewStore = func(models.Credentials) store.ContentStore { return ms }

	collections := []models.Collection{
		{Kind: "news", Label: "News", Path: "content/news.json", Container: "articles", IDPrefix: "news"},
		{Kind: "events", Label: "Events", Path: "content/events.json", Container: "events", IDPrefix: "evt"},
	}
	syncer := services.NewSyncer(collections, "content/site-config.json", "images", nil)
	api := NewAPI(manager, syncer, nil)

	r := gin.New()
	r.Use(sessions.Sessions("gitcms_session", cookie.NewStore([]byte("test-secret"))))
	r.POST("/login", api.Login)
	r.POST("/logout", api.Logout)
	authorized := r.Group("/api")
	authorized.Use(api.AuthRequired)
	{
		authorized.GET("/collections/:kind", api.GetCollection)
		authorized.POST("/collections/:kind", api.SaveRecord)
		authorized.DELETE("/collections/:kind/:id", api.DeleteRecord)
		authorized.GET("/settings", api.GetSettings)
		authorized.PUT("/settings", api.SaveSettings)
		authorized.GET("/images", api.ListImages)
		authorized.GET("/status", api.Status)
	}

	return &testApp{router: r, store: ms}
}

func (app *testApp) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range app.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	if cs := w.Result().Cookies(); len(cs) > 0 {
		app.cookies = cs
	}
	return w
}

func (app *testApp) login(t *testing.T) {
	t.Helper()
	w := app.do(t, http.MethodPost, "/login",
		`{"account":"acme","repository":"site","token":"tok","branch":"main"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestAPIRequiresSession(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodGet, "/api/collections/news", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginLoadsDocuments(t *testing.T) {
	app := newTestApp(t)
	app.store.files["content/news.json"] = memFile{
		content:  []byte(`{"articles":[{"id":"news-1","title":"Hello"}]}`),
		revision: "rev-a",
	}

	app.login(t)

	w := app.do(t, http.MethodGet, "/api/collections/news", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"news-1"`)
	assert.Contains(t, w.Body.String(), `"rev-a"`)
}

func TestLoginMissingFields(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodPost, "/login", `{"account":"acme"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveAndDeleteRecord(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	w := app.do(t, http.MethodPost, "/api/collections/news", `{"title":"Cleanup Day"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Record models.Record `json:"record"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	id := resp.Record.ID()
	assert.True(t, strings.HasPrefix(id, "news-"))

	stored := app.store.files["content/news.json"]
	assert.Contains(t, string(stored.content), "Cleanup Day")

	w = app.do(t, http.MethodDelete, "/api/collections/news/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)

	stored = app.store.files["content/news.json"]
	assert.NotContains(t, string(stored.content), "Cleanup Day")
}

func TestSaveRecord_UnknownKind(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	w := app.do(t, http.MethodPost, "/api/collections/pages", `{"title":"x"}`)
	// Unknown kinds surface as a client error, not a store failure.
	assert.NotEqual(t, http.StatusOK, w.Code)
}

func TestSettingsRoundTrip(t *testing.T) {
	app := newTestApp(t)
	app.store.files["content/site-config.json"] = memFile{
		content:  []byte(`{"colors":{"primary":"#000000"}}`),
		revision: "rev-c",
	}
	app.login(t)

	w := app.do(t, http.MethodPut, "/api/settings", `{"colors":{"primary":"#112233"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(t, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "#112233")
}

func TestLogoutEndsSession(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	w := app.do(t, http.MethodPost, "/logout", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/api/status", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStatusEndpoint(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	w := app.do(t, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "idle")
}
