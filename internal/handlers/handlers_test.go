package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/damacus/iron-browser/internal/renderer"
)

var testNow = time.Date(2025, 7, 8, 9, 10, 11, 0, time.UTC)

func newTestServer(t *testing.T, s *memStore, pageSize int) *echo.Echo {
	t.Helper()

	registry := newTestRegistry(t, s, pageSize)
	browserHandler := NewBrowserHandler(registry, nil)
	downloadHandler := NewDownloadHandler(registry, nil)
	downloadHandler.now = func() time.Time { return testNow }

	e := echo.New()
	e.Renderer = renderer.New()
	e.GET("/browser", browserHandler.Browse)
	e.GET("/api/sources", browserHandler.Sources)
	e.GET("/api/buckets", browserHandler.Buckets)
	e.GET("/api/listing", browserHandler.Listing)
	e.GET("/api/folder-stats", browserHandler.FolderStats)
	e.GET("/download", downloadHandler.Download)
	e.GET("/preview", downloadHandler.Preview)
	e.POST("/download/batch", downloadHandler.DownloadBatch)
	e.GET("/download/folder", downloadHandler.DownloadFolder)
	return e
}

func get(e *echo.Echo, target string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func postForm(e *echo.Echo, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
