package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/damacus/iron-browser/internal/archive"
	"github.com/damacus/iron-browser/internal/browser"
	"github.com/damacus/iron-browser/internal/utils"
)

// DownloadHandler streams single objects and archives.
type DownloadHandler struct {
	sources SourceResolver
	logger  *zap.Logger
	now     func() time.Time
}

// NewDownloadHandler creates a new DownloadHandler
func NewDownloadHandler(sources SourceResolver, logger *zap.Logger) *DownloadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DownloadHandler{sources: sources, logger: logger, now: time.Now}
}

// Download streams one object as an attachment.
func (h *DownloadHandler) Download(c echo.Context) error {
	key := c.QueryParam("key")
	if isBlank(key) {
		return echo.NewHTTPError(http.StatusBadRequest, "Object key is required")
	}

	b := h.sources.Resolve(c.QueryParam("source"))
	reader, meta, err := b.Open(c.Request().Context(), c.QueryParam("bucket"), key)
	if err != nil {
		return toHTTPError(err)
	}
	defer func() { _ = reader.Close() }()

	headers := c.Response().Header()
	setDisposition(headers, "attachment", browser.FileName(key))
	if meta.ContentLength >= 0 {
		headers.Set(echo.HeaderContentLength, strconv.FormatInt(meta.ContentLength, 10))
	}

	return c.Stream(http.StatusOK, echo.MIMEOctetStream, reader)
}

// Preview streams an image inline for thumbnails and previews.
func (h *DownloadHandler) Preview(c echo.Context) error {
	key := c.QueryParam("key")
	if !browser.IsPreviewable(key) {
		return echo.NewHTTPError(http.StatusBadRequest, "Preview not supported for this object")
	}

	b := h.sources.Resolve(c.QueryParam("source"))
	reader, meta, err := b.Open(c.Request().Context(), c.QueryParam("bucket"), key)
	if err != nil {
		return toHTTPError(err)
	}
	defer func() { _ = reader.Close() }()

	// Only image types are served inline; anything else the backend
	// reports falls back to the type implied by the extension.
	contentType := meta.ContentType
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		contentType = getContentTypeFromExt(key)
	}

	headers := c.Response().Header()
	headers.Set(echo.HeaderCacheControl, "public, max-age=300")
	setDisposition(headers, "inline", browser.FileName(key))
	if strings.HasPrefix(contentType, "image/svg") {
		// SVG can carry script; serve it in a sandbox.
		headers.Set("Content-Security-Policy", "sandbox")
	}
	if meta.ContentLength >= 0 {
		headers.Set(echo.HeaderContentLength, strconv.FormatInt(meta.ContentLength, 10))
	}

	return c.Stream(http.StatusOK, contentType, reader)
}

// DownloadBatch streams the selected keys as one archive.
func (h *DownloadHandler) DownloadBatch(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form").SetInternal(err)
	}

	keys := browser.DistinctKeys(form["keys"])
	if len(keys) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No objects selected for download")
	}
	format, err := archive.ParseFormat(form.Get("format"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	b := h.sources.Resolve(form.Get("source"))
	bucket := form.Get("bucket")
	name := archive.FileName("download", format, h.now())

	return h.streamArchive(c, format, name, func(sink archive.Sink) error {
		_, err := b.ExportKeys(c.Request().Context(), bucket, keys, sink)
		return err
	})
}

// DownloadFolder streams every object below a prefix as one archive.
func (h *DownloadHandler) DownloadFolder(c echo.Context) error {
	prefix := c.QueryParam("prefix")
	if isBlank(prefix) {
		return echo.NewHTTPError(http.StatusBadRequest, "Folder prefix is required")
	}
	format, err := archive.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	b := h.sources.Resolve(c.QueryParam("source"))
	bucket := c.QueryParam("bucket")
	name := archive.FileName(browser.FolderName(browser.NormalizePrefix(prefix)), format, h.now())

	return h.streamArchive(c, format, name, func(sink archive.Sink) error {
		_, err := b.ExportPrefix(c.Request().Context(), bucket, prefix, sink)
		return err
	})
}

// streamArchive writes an archive straight into the response. A failure
// before the first byte is flushed becomes a regular error response; after
// that the stream is cut short without finalizing the archive.
func (h *DownloadHandler) streamArchive(c echo.Context, format archive.Format, name string, export func(archive.Sink) error) error {
	logger := utils.Logger(c, h.logger)
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, format.ContentType())
	setDisposition(res.Header(), "attachment", name)

	sink, err := archive.NewSink(format, res)
	if err != nil {
		clearDownloadHeaders(res.Header())
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to start archive").SetInternal(err)
	}

	if err := export(sink); err != nil {
		archive.Abort(sink)
		if !res.Committed {
			clearDownloadHeaders(res.Header())
			return toHTTPError(err)
		}
		logger.Error("Archive stream aborted", zap.String("archive", name), zap.Error(err))
		return err
	}

	if err := sink.Close(); err != nil {
		logger.Error("Failed to finalize archive", zap.String("archive", name), zap.Error(err))
		return err
	}
	return nil
}

func clearDownloadHeaders(h http.Header) {
	h.Del(echo.HeaderContentType)
	h.Del(echo.HeaderContentDisposition)
}
