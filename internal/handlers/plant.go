package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/plantpedia/plantpedia/internal/events"
	"github.com/plantpedia/plantpedia/internal/logging"
	"github.com/plantpedia/plantpedia/internal/models"
	"github.com/plantpedia/plantpedia/internal/repository"
	"github.com/plantpedia/plantpedia/internal/util"
)

type PlantHandler struct {
	Plants   *repository.PlantRepository
	Producer *events.Producer
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *PlantHandler) publish(c echo.Context, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	key, _ := event["plant_id"].(string)
	if err := h.Producer.PublishEvent(ctx, events.PlantTopic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka_publish_error", "error", err)
	}
}

func (h *PlantHandler) GetPlants(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, plants, err := h.Plants.List(c.Request().Context(), offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": plants,
		"meta": echo.Map{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *PlantHandler) GetPlant(c echo.Context) error {
	plant, err := h.Plants.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if plant == nil {
		return echo.NewHTTPError(http.StatusNotFound, "plant not found")
	}
	return c.JSON(http.StatusOK, plant)
}

func (h *PlantHandler) CreatePlant(c echo.Context) error {
	var plant models.PlantInfo
	if err := c.Bind(&plant); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if plant.ID == "" || plant.ScientificName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id and scientific_name are required")
	}

	if err := h.Plants.Create(c.Request().Context(), &plant); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]interface{}{
		"type":     "plant_created",
		"plant_id": plant.ID,
		"name":     plant.ScientificName,
	})

	return c.JSON(http.StatusCreated, plant)
}

func (h *PlantHandler) PatchPlant(c echo.Context) error {
	plant, err := h.Plants.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if plant == nil {
		return echo.NewHTTPError(http.StatusNotFound, "plant not found")
	}

	var req struct {
		ScientificName *string `json:"scientific_name"`
		CommonName     *string `json:"common_name"`
		Description    *string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ScientificName != nil {
		plant.ScientificName = *req.ScientificName
	}
	if req.CommonName != nil {
		plant.CommonName = *req.CommonName
	}
	if req.Description != nil {
		plant.Description = *req.Description
	}

	if err := h.Plants.Update(c.Request().Context(), plant); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]interface{}{
		"type":     "plant_updated",
		"plant_id": plant.ID,
	})

	return c.JSON(http.StatusOK, plant)
}

func (h *PlantHandler) DeletePlant(c echo.Context) error {
	id := c.Param("id")
	if err := h.Plants.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]interface{}{
		"type":     "plant_deleted",
		"plant_id": id,
	})

	return c.NoContent(http.StatusNoContent)
}
