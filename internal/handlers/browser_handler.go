package handlers

import (
	"net/http"
	"slices"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/damacus/iron-browser/internal/archive"
	"github.com/damacus/iron-browser/internal/browser"
	customMiddleware "github.com/damacus/iron-browser/internal/middleware"
	"github.com/damacus/iron-browser/internal/models"
	"github.com/damacus/iron-browser/internal/utils"
)

// BrowserHandler serves the browse page and its JSON counterparts.
type BrowserHandler struct {
	sources SourceResolver
	logger  *zap.Logger
}

// NewBrowserHandler creates a new BrowserHandler
func NewBrowserHandler(sources SourceResolver, logger *zap.Logger) *BrowserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowserHandler{sources: sources, logger: logger}
}

type browseParams struct {
	Source      string `query:"source"`
	Bucket      string `query:"bucket"`
	Prefix      string `query:"prefix"`
	TokenStack  string `query:"tokenStack"`
	Query       string `query:"query"`
	ShowDetails bool   `query:"showDetails"`
}

func bindBrowseParams(c echo.Context) (browseParams, error) {
	var p browseParams
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &p); err != nil {
		return p, echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters").SetInternal(err)
	}
	return p, nil
}

func (p browseParams) listRequest(bucket string) browser.ListRequest {
	return browser.ListRequest{
		Bucket:               bucket,
		Prefix:               p.Prefix,
		TokenStack:           p.TokenStack,
		Query:                p.Query,
		IncludeFolderDetails: p.ShowDetails,
	}
}

// Browse renders the browser page. Storage errors are shown inline above
// an empty listing; htmx requests receive only the listing fragment.
func (h *BrowserHandler) Browse(c echo.Context) error {
	params, err := bindBrowseParams(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	logger := utils.Logger(c, h.logger)
	b := h.sources.Resolve(params.Source)
	src := b.Source()

	activeBucket := params.Bucket
	if isBlank(activeBucket) {
		activeBucket = src.DefaultBucket
	}

	var errorMessage string
	buckets, err := h.sources.ListBuckets(ctx, src.Name)
	if err != nil {
		logger.Warn("Failed to list buckets", zap.String("source", src.Name), zap.Error(err))
		errorMessage = "Failed to list buckets for source '" + src.Name + "'"
		buckets = []string{}
	}
	if isBlank(activeBucket) && len(buckets) > 0 {
		activeBucket = buckets[0]
	}
	if !isBlank(activeBucket) && !slices.Contains(buckets, activeBucket) {
		buckets = append(buckets, activeBucket)
	}

	listing, err := b.List(ctx, params.listRequest(activeBucket))
	if err != nil {
		message, inline := storageMessage(err)
		if !inline {
			return toHTTPError(err)
		}
		logger.Info("Listing unavailable",
			zap.String("source", src.Name),
			zap.String("bucket", activeBucket),
			zap.Error(err),
		)
		errorMessage = message
		listing = &models.Listing{
			Bucket:  activeBucket,
			Folders: []models.Folder{},
			Objects: []models.Object{},
		}
	}

	data := map[string]interface{}{
		"CSRFToken":               customMiddleware.CSRFToken(c),
		"Sources":                 h.sources.Sources(),
		"ActiveSource":            src.Name,
		"ActiveSourceDisplayName": src.DisplayName,
		"Buckets":                 buckets,
		"ActiveBucket":            activeBucket,
		"Listing":                 listing,
		"Prefix":                  listing.Prefix,
		"Breadcrumbs":             buildBreadcrumbs(listing.Prefix),
		"ParentPrefix":            browser.ParentPrefix(listing.Prefix),
		"Query":                   params.Query,
		"ShowDetails":             params.ShowDetails,
		"ErrorMessage":            errorMessage,
		"Formats":                 []archive.Format{archive.FormatZip, archive.FormatTarGz, archive.FormatTarZst},
	}

	if c.Request().Header.Get("HX-Request") == "true" {
		return c.Render(http.StatusOK, "listing", data)
	}
	return c.Render(http.StatusOK, "browser", data)
}

// Sources returns the configured sources as JSON.
func (h *BrowserHandler) Sources(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sources.Sources())
}

// Buckets returns the bucket names visible to a source as JSON.
func (h *BrowserHandler) Buckets(c echo.Context) error {
	buckets, err := h.sources.ListBuckets(c.Request().Context(), c.QueryParam("source"))
	if err != nil {
		utils.Logger(c, h.logger).Error("Failed to list buckets", zap.Error(err))
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, buckets)
}

// Listing returns one browse page as JSON.
func (h *BrowserHandler) Listing(c echo.Context) error {
	params, err := bindBrowseParams(c)
	if err != nil {
		return err
	}

	listing, err := h.sources.Resolve(params.Source).List(c.Request().Context(), params.listRequest(params.Bucket))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, listing)
}

type folderStatsResponse struct {
	Prefix       string    `json:"prefix"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified,omitzero"`
}

// FolderStats aggregates one folder sub-tree and returns it as JSON.
func (h *BrowserHandler) FolderStats(c echo.Context) error {
	prefix := c.QueryParam("prefix")
	if isBlank(prefix) {
		return echo.NewHTTPError(http.StatusBadRequest, "Folder prefix is required")
	}

	b := h.sources.Resolve(c.QueryParam("source"))
	stats, err := b.Aggregate(c.Request().Context(), c.QueryParam("bucket"), prefix)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, folderStatsResponse{
		Prefix:       browser.NormalizePrefix(prefix),
		Size:         stats.Size,
		LastModified: stats.LastModified,
	})
}
