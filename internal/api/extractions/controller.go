package extractions

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/hbomb79/mediaprobe/internal/extract"
	"github.com/hbomb79/mediaprobe/internal/queue"
	"github.com/hbomb79/mediaprobe/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

var log = logger.Get("ExtractionsController")

type (
	// ExtractionDto is the response used by endpoints that return
	// the in-flight extractions
	ExtractionDto struct {
		ID      uuid.UUID   `json:"id"`
		MediaID uuid.UUID   `json:"media_id"`
		State   string      `json:"state"`
		Attempt int         `json:"attempt"`
		Trouble *TroubleDto `json:"trouble"`
	}

	TroubleDto struct {
		Type      string `json:"type"`
		Message   string `json:"message"`
		Transient bool   `json:"transient"`
	}

	Service interface {
		GetAllExtractions() []*extract.Extraction
		GetExtraction(uuid.UUID) *extract.Extraction
		GetDeadLetters(context.Context) ([]queue.DeadLetter, error)
		RetryDeadLetter(context.Context, uuid.UUID) error
	}

	Controller struct {
		service Service
	}
)

func New(service Service) *Controller {
	return &Controller{service: service}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.GET("/", controller.list)
	eg.GET("/failed/", controller.listFailed)
	eg.GET("/:id/", controller.get)
	eg.POST("/failed/:id/retry/", controller.retryFailed)
}

func (controller *Controller) list(ec echo.Context) error {
	dtos := lo.Map(controller.service.GetAllExtractions(), func(item *extract.Extraction, _ int) *ExtractionDto {
		return NewDto(item)
	})

	return ec.JSON(http.StatusOK, dtos)
}

func (controller *Controller) get(ec echo.Context) error {
	id, err := uuid.Parse(ec.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Extraction ID is not a valid UUID")
	}

	item := controller.service.GetExtraction(id)
	if item == nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}

	return ec.JSON(http.StatusOK, NewDto(item))
}

func (controller *Controller) listFailed(ec echo.Context) error {
	letters, err := controller.service.GetDeadLetters(ec.Request().Context())
	if err != nil {
		log.Errorf("Failed to fetch dead letters: %v\n", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	return ec.JSON(http.StatusOK, letters)
}

func (controller *Controller) retryFailed(ec echo.Context) error {
	id, err := uuid.Parse(ec.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Media ID is not a valid UUID")
	}

	if err := controller.service.RetryDeadLetter(ec.Request().Context(), id); err != nil {
		if errors.Is(err, extract.ErrDeadLetterNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "No failed extraction exists for this media")
		}

		log.Errorf("Failed to retry dead letter for %s: %v\n", id, err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	return ec.NoContent(http.StatusAccepted)
}

func NewDto(item *extract.Extraction) *ExtractionDto {
	dto := &ExtractionDto{
		ID:      item.ID,
		MediaID: item.MediaID,
		State:   item.State().String(),
		Attempt: item.Attempt(),
	}

	if trouble := item.Trouble(); trouble != nil {
		dto.Trouble = &TroubleDto{Type: trouble.Type().String(), Message: trouble.Error(), Transient: trouble.IsTransient()}
	}

	return dto
}
