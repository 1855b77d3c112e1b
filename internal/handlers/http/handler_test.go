package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"WooCostAdjuster/internal/adjuster"
	"WooCostAdjuster/internal/bulk"
	"WooCostAdjuster/internal/cache"
	"WooCostAdjuster/internal/catalog"
	"WooCostAdjuster/internal/config"
	"WooCostAdjuster/internal/database"
	"WooCostAdjuster/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "secret-token"

func TestMain(m *testing.M) {
	logging.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, store *catalog.MemoryStore) *httptest.Server {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "handler.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.COSTADJUSTER.Enabled = 1
	cfg.COSTADJUSTER.Multiplier = "1.65"
	cfg.CACHE.TimeUpdate = 60
	settings := cache.NewCacheSettings(db, cfg)

	job := bulk.NewJob(store, bulk.NewDBProgressStore(db, time.Hour), bulk.NewDBCursorStore(db), settings,
		bulk.Options{StartBatchSize: 2, StepBatchSize: 2, RecentLogs: 10})

	h := &Handler{
		Job:      job,
		Adjuster: adjuster.New(store, settings, adjuster.NewDBRecorder(db, 100)),
		Settings: settings,
		DB:       db,
		Token:    testToken,
	}
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, target, token string, body io.Reader, contentType string) (int, testResponse) {
	t.Helper()
	req, err := http.NewRequest(method, target, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("X-Auth-Token", token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out testResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func smallCatalog() *catalog.MemoryStore {
	return catalog.NewMemoryStore(
		&catalog.Item{ID: 1, Name: "A", Type: catalog.TypeSimple, RegularPrice: "16.50"},
		&catalog.Item{ID: 2, Name: "B", Type: catalog.TypeSimple, RegularPrice: "33"},
		&catalog.Item{ID: 3, Name: "C", Type: catalog.TypeSimple},
	)
}

func TestAuthFailsClosed(t *testing.T) {
	srv := newTestServer(t, smallCatalog())

	status, out := do(t, http.MethodPost, srv.URL+"/cost/bulk/start", "", nil, "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.False(t, out.Success)
	assert.Contains(t, string(out.Data), "permission")

	status, _ = do(t, http.MethodPost, srv.URL+"/cost/bulk/progress", "wrong", nil, "")
	assert.Equal(t, http.StatusForbidden, status)

	form := url.Values{"nonce": {testToken}}
	status, out = do(t, http.MethodPost, srv.URL+"/cost/bulk/progress", "", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, out.Success)
}

func TestEmptyTokenRejectsEverything(t *testing.T) {
	h := &Handler{}
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	status, _ := do(t, http.MethodGet, srv.URL+"/cost/bulk/progress", "", nil, "")
	assert.Equal(t, http.StatusForbidden, status)
}

func TestBulkStartAndProgress(t *testing.T) {
	srv := newTestServer(t, smallCatalog())

	status, out := do(t, http.MethodPost, srv.URL+"/cost/bulk/start", testToken, nil, "")
	require.Equal(t, http.StatusOK, status)
	require.True(t, out.Success)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Data, &summary))
	assert.Equal(t, "Processing 3 products. Started with 2 products. Check progress for updates.", summary["message"])
	assert.Equal(t, 3.0, summary["total"])
	assert.Equal(t, 2.0, summary["processed"])
	assert.Equal(t, false, summary["complete"])
	for _, key := range []string{"success", "failed", "recent_logs"} {
		assert.Contains(t, summary, key)
	}

	status, out = do(t, http.MethodGet, srv.URL+"/cost/bulk/progress", testToken, nil, "")
	require.Equal(t, http.StatusOK, status)

	var progress bulk.Progress
	require.NoError(t, json.Unmarshal(out.Data, &progress))
	assert.Equal(t, 3, progress.Processed)
	assert.Equal(t, 2, progress.Success)
	assert.Equal(t, 1, progress.Failed)
	assert.True(t, progress.Complete)
	assert.Equal(t, "C", progress.RecentLogs[0].ItemName)
	assert.Equal(t, bulk.STATUS_ERROR, progress.RecentLogs[0].Status)
}

func TestBulkStartEmptyCatalog(t *testing.T) {
	srv := newTestServer(t, catalog.NewMemoryStore())

	status, out := do(t, http.MethodPost, srv.URL+"/cost/bulk/start", testToken, nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.False(t, out.Success)
	assert.JSONEq(t, `{"message":"No products found to update."}`, string(out.Data))
}

func TestAdjustAndLogs(t *testing.T) {
	srv := newTestServer(t, smallCatalog())

	status, out := do(t, http.MethodPost, srv.URL+"/cost/adjust/product/1", testToken,
		strings.NewReader(`{"Name":"A","PurchaseCost":1}`), "application/json")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"Name":"A","PurchaseCost":10,"UnitPrice":10,"qb_p_cost":10,"_product_cost":10}`, string(out.Data))

	status, out = do(t, http.MethodPost, srv.URL+"/cost/adjust/bulk/3", testToken, strings.NewReader(`{}`), "application/json")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{}`, string(out.Data))

	status, _ = do(t, http.MethodPost, srv.URL+"/cost/adjust/variation/abc", testToken, nil, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, http.MethodPost, srv.URL+"/cost/adjust/product/1", testToken, strings.NewReader(`[1,2]`), "application/json")
	assert.Equal(t, http.StatusBadRequest, status)

	status, out = do(t, http.MethodGet, srv.URL+"/cost/logs?status=error", testToken, nil, "")
	require.Equal(t, http.StatusOK, status)
	var logs struct {
		Logs []map[string]interface{} `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &logs))
	require.Len(t, logs.Logs, 1)
	assert.Equal(t, 3.0, logs.Logs[0]["product_id"])
	assert.Equal(t, "bulk_sync", logs.Logs[0]["source"])

	status, out = do(t, http.MethodDelete, srv.URL+"/cost/logs", testToken, nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"deleted":2}`, string(out.Data))

	status, out = do(t, http.MethodGet, srv.URL+"/cost/logs", testToken, nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"logs":[]}`, string(out.Data))
}

func TestSettings(t *testing.T) {
	srv := newTestServer(t, smallCatalog())

	status, out := do(t, http.MethodGet, srv.URL+"/cost/settings", testToken, nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"enabled":true,"multiplier":1.65}`, string(out.Data))

	form := url.Values{"enabled": {"no"}, "multiplier": {"0.001"}}
	status, out = do(t, http.MethodPost, srv.URL+"/cost/settings", testToken, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusOK, status)
	var saved map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Data, &saved))
	assert.Equal(t, false, saved["enabled"])
	assert.Equal(t, 1.65, saved["multiplier"])
	assert.NotEmpty(t, saved["warning"])

	// disabled adjuster leaves the payload alone
	status, out = do(t, http.MethodPost, srv.URL+"/cost/adjust/product/1", testToken, strings.NewReader(`{"UnitPrice":3}`), "application/json")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"UnitPrice":3}`, string(out.Data))
}

func TestVersion(t *testing.T) {
	srv := httptest.NewServer((&Handler{}).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.HasPrefix(string(body), "Version "))
}
