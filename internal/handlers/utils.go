package handlers

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/damacus/iron-browser/internal/browser"
	"github.com/damacus/iron-browser/internal/models"
)

// SourceResolver gives handlers access to the configured sources.
type SourceResolver interface {
	Sources() []models.SourceInfo
	Resolve(name string) *browser.Browser
	ListBuckets(ctx context.Context, name string) ([]string, error)
}

// toHTTPError maps engine errors onto HTTP status codes. Errors that are
// already *echo.HTTPError pass through.
func toHTTPError(err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	switch {
	case browser.IsAccessDenied(err):
		return echo.NewHTTPError(http.StatusForbidden, err.Error()).SetInternal(err)
	case browser.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
	case errors.Is(err, browser.ErrInvalidTokenStack):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid pagination state").SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Storage request failed").SetInternal(err)
}

// storageMessage returns the user-facing text for errors the browse page
// renders inline, or false for errors that should fail the request.
func storageMessage(err error) (string, bool) {
	var storageErr *browser.StorageError
	if errors.As(err, &storageErr) {
		return storageErr.Error(), true
	}
	return "", false
}

// buildBreadcrumbs returns one crumb per prefix segment with its cumulative path.
func buildBreadcrumbs(prefix string) []models.Breadcrumb {
	breadcrumbs := []models.Breadcrumb{}
	path := ""
	for _, part := range strings.Split(prefix, "/") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		path += part + "/"
		breadcrumbs = append(breadcrumbs, models.Breadcrumb{
			Name: part,
			Path: path,
		})
	}
	return breadcrumbs
}

// setDisposition sets Content-Disposition with a properly quoted file name.
func setDisposition(h http.Header, disposition, filename string) {
	value := mime.FormatMediaType(disposition, map[string]string{"filename": filename})
	if value == "" {
		value = disposition
	}
	h.Set(echo.HeaderContentDisposition, value)
}

func getContentTypeFromExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	types := map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
		".bmp":  "image/bmp",
		".tif":  "image/tiff",
		".tiff": "image/tiff",
		".avif": "image/avif",
		".svg":  "image/svg+xml",
		".txt":  "text/plain",
		".json": "application/json",
		".pdf":  "application/pdf",
		".zip":  "application/zip",
		".gz":   "application/gzip",
	}
	if t, ok := types[ext]; ok {
		return t
	}
	return echo.MIMEOctetStream
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
