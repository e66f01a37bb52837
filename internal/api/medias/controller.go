package medias

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/hbomb79/mediaprobe/internal/media"
	"github.com/hbomb79/mediaprobe/pkg/logger"
	"github.com/labstack/echo/v4"
)

var log = logger.Get("MediaController")

const (
	HeaderAssetsRoot    = "X-Assets-Root"
	HeaderAccelRedirect = "X-Accel-Redirect"
	defaultMimeType     = "application/octet-stream"
	DefaultAssetsPrefix = "/assets"
)

type (
	Store interface {
		GetMedia(ctx context.Context, mediaID uuid.UUID) (*media.Record, error)
	}

	Service interface {
		Enqueue(ctx context.Context, mediaID uuid.UUID) error
	}

	EnqueueResponse struct {
		MediaID uuid.UUID `json:"media_id"`
		Status  string    `json:"status"`
	}

	// Controller defines the media routes; requesting extraction of a
	// media's attributes, and downloading the media file itself.
	Controller struct {
		store         Store
		service       Service
		assetsPrefix  string
		downloadGuard echo.MiddlewareFunc
	}
)

// New constructs the media controller. The download guard is applied to the
// download route only, and is expected to perform the access check.
func New(store Store, service Service, assetsPrefix string, downloadGuard echo.MiddlewareFunc) *Controller {
	if assetsPrefix == "" {
		assetsPrefix = DefaultAssetsPrefix
	}

	return &Controller{store: store, service: service, assetsPrefix: strings.TrimSuffix(assetsPrefix, "/"), downloadGuard: downloadGuard}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.POST("/:id/extraction/", controller.postExtraction)
	eg.GET("/:id/download/", controller.download, controller.downloadGuard)
}

// postExtraction enqueues attribute extraction for the media, responding
// with 202 as the extraction happens in the background.
func (controller *Controller) postExtraction(ec echo.Context) error {
	record, err := controller.getMedia(ec)
	if err != nil {
		return err
	}

	if err := controller.service.Enqueue(ec.Request().Context(), record.ID); err != nil {
		log.Errorf("Failed to enqueue extraction for %s: %v\n", record, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to enqueue extraction")
	}

	return ec.JSON(http.StatusAccepted, EnqueueResponse{MediaID: record.ID, Status: "queued"})
}

// download responds with the headers required for the fronting proxy to
// serve the media file using an internal redirect. The body is empty.
func (controller *Controller) download(ec echo.Context) error {
	record, err := controller.getMedia(ec)
	if err != nil {
		return err
	}

	root, name := filepath.Split(record.Path)
	mimeType := defaultMimeType
	if kind, err := filetype.MatchFile(record.Path); err != nil {
		log.Warnf("Failed to sniff content type of %s: %v\n", record, err)
	} else if kind != filetype.Unknown {
		mimeType = kind.MIME.Value
	}

	header := ec.Response().Header()
	header.Set(HeaderAssetsRoot, filepath.Clean(root))
	header.Set(HeaderAccelRedirect, fmt.Sprintf("%s/%s", controller.assetsPrefix, name))
	header.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	header.Set(echo.HeaderContentType, mimeType)

	return ec.NoContent(http.StatusOK)
}

func (controller *Controller) getMedia(ec echo.Context) (*media.Record, error) {
	id, err := uuid.Parse(ec.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Media ID is not a valid UUID")
	}

	record, err := controller.store.GetMedia(ec.Request().Context(), id)
	if errors.Is(err, media.ErrMediaNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("Media %s does not exist", id))
	} else if err != nil {
		log.Errorf("Failed to fetch media %s: %v\n", id, err)
		return nil, echo.NewHTTPError(http.StatusInternalServerError)
	}

	return record, nil
}
