package ui

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purin2/sql-practice-tutor/internal/generator"
	"github.com/purin2/sql-practice-tutor/internal/sink/jsonfile"
	"github.com/purin2/sql-practice-tutor/internal/testutil"
	"github.com/purin2/sql-practice-tutor/internal/ui/features/schema"
	"github.com/purin2/sql-practice-tutor/pkg/core"
)

func writeDocument(t *testing.T, path string, users int) *core.Document {
	t.Helper()

	cfg := generator.DefaultConfig()
	cfg.Users = users
	cfg.Payments = users
	cfg.Events = users * 5
	g, err := generator.New(cfg, nil, nil)
	require.NoError(t, err)
	res, err := g.Generate(generator.NewRand(7))
	require.NoError(t, err)

	require.NoError(t, jsonfile.WriteFile(path, res.Document))
	return res.Document
}

func setupServer(t *testing.T, limit int) (*Server, *httptest.Server, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "schema.json")
	writeDocument(t, path, 10)

	s := NewServer(Config{Path: path, Limit: limit, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, s.Load())

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts, path
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url) //nolint:noctx
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestServer_Healthz(t *testing.T) {
	_, ts, _ := setupServer(t, 0)

	resp, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))
}

func TestServer_Schema(t *testing.T) {
	_, ts, path := setupServer(t, 0)

	resp, body := get(t, ts.URL+"/api/schema")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get(schema.RevisionHeader))
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	doc, err := jsonfile.ReadFile(path)
	require.NoError(t, err)
	var want strings.Builder
	require.NoError(t, core.Encode(&want, doc))
	assert.Equal(t, want.String(), string(body))
}

func TestServer_Tables(t *testing.T) {
	_, ts, _ := setupServer(t, 0)

	resp, body := get(t, ts.URL+"/api/tables")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tables []schema.TableSummary
	require.NoError(t, json.Unmarshal(body, &tables))
	require.Len(t, tables, 4)

	names := make([]string, len(tables))
	for i, tbl := range tables {
		names[i] = tbl.Name
	}
	assert.Equal(t, []string{"users", "payments", "events", "ad_costs"}, names)
	assert.Equal(t, 10, tables[0].Rows)
	assert.NotEmpty(t, tables[1].Relations)
	assert.NotContains(t, string(body), "sampleData")
}

func TestServer_Table(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		query      string
		wantStatus int
		wantRows   int
	}{
		{name: "all rows", query: "", wantStatus: http.StatusOK, wantRows: 10},
		{name: "explicit limit", query: "?limit=3", wantStatus: http.StatusOK, wantRows: 3},
		{name: "limit above count", query: "?limit=50", wantStatus: http.StatusOK, wantRows: 10},
		{name: "server default", limit: 4, query: "", wantStatus: http.StatusOK, wantRows: 4},
		{name: "zero means all", limit: 4, query: "?limit=0", wantStatus: http.StatusOK, wantRows: 10},
		{name: "bad limit", query: "?limit=abc", wantStatus: http.StatusBadRequest},
		{name: "negative limit", query: "?limit=-1", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ts, _ := setupServer(t, tt.limit)

			resp, body := get(t, ts.URL+"/api/tables/users"+tt.query)
			require.Equal(t, tt.wantStatus, resp.StatusCode, string(body))
			if tt.wantStatus != http.StatusOK {
				assert.Contains(t, string(body), "invalid limit")
				return
			}

			var table core.Table
			require.NoError(t, json.Unmarshal(body, &table))
			assert.Equal(t, "users", table.Name)
			assert.Len(t, table.SampleData, tt.wantRows)
			assert.Equal(t, "U00001", table.SampleData[0].String("user_id"))
		})
	}
}

func TestServer_TableNotFound(t *testing.T) {
	_, ts, _ := setupServer(t, 0)

	resp, body := get(t, ts.URL+"/api/tables/orders")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), `table \"orders\" not found`)
}

func TestServer_LoadBumpsRevision(t *testing.T) {
	s, ts, path := setupServer(t, 0)

	writeDocument(t, path, 15)
	require.NoError(t, s.Load())

	_, rev := s.Document()
	assert.Equal(t, uint64(2), rev)

	resp, body := get(t, ts.URL+"/api/tables")
	assert.Equal(t, "2", resp.Header.Get(schema.RevisionHeader))
	var tables []schema.TableSummary
	require.NoError(t, json.Unmarshal(body, &tables))
	assert.Equal(t, 15, tables[0].Rows)
}

func TestServer_LoadKeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	writeDocument(t, path, 10)

	s := NewServer(Config{Path: path})
	require.NoError(t, s.Load())

	s.path = filepath.Join(dir, "missing.json")
	require.Error(t, s.Load())

	doc, rev := s.Document()
	assert.Equal(t, uint64(1), rev)
	assert.Len(t, doc.Tables, 4)
}

func TestServer_Updates(t *testing.T) {
	s, ts, _ := setupServer(t, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/updates", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream"))

	lines := make(chan string, 16)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	expect := func(want string) {
		t.Helper()
		timeout := time.After(2 * time.Second)
		for {
			select {
			case line, ok := <-lines:
				require.True(t, ok, "stream closed before %q", want)
				if strings.Contains(line, want) {
					return
				}
			case <-timeout:
				t.Fatalf("did not receive %q", want)
			}
		}
	}

	expect("datastar-patch-signals")
	expect(`"revision":1`)

	require.Eventually(t, func() bool { return s.Notifier().Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, s.Load())
	expect("datastar-patch-signals")
	expect(`"revision":2`)
}

func TestServer_ServeAndWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	writeDocument(t, path, 10)

	s := NewServer(Config{Path: path, Port: 0, Watch: true, Logger: testutil.NewTestLogger(t)})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ctx) }()

	require.Eventually(t, func() bool { return s.Addr() != nil }, 2*time.Second, 10*time.Millisecond)
	port := s.Addr().(*net.TCPAddr).Port
	url := fmt.Sprintf("http://127.0.0.1:%d/healthz", port)

	resp, _ := get(t, url)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	writeDocument(t, path, 12)
	require.Eventually(t, func() bool {
		doc, rev := s.Document()
		return rev >= 2 && len(doc.Tables[0].SampleData) == 12
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("Serve did not stop")
	}
}

func TestServer_ServeMissingDocument(t *testing.T) {
	s := NewServer(Config{Path: filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, s.Serve(context.Background()))
}
