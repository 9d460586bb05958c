// handlers_level.go - Level listing, upload and validation handlers
package api

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/siege-game/backend/internal/logger"
	"github.com/siege-game/backend/internal/models"
	"github.com/siege-game/backend/internal/parser"
	"github.com/siege-game/backend/internal/storage"
	"github.com/sirupsen/logrus"
)

// LevelHandlerImpl implements the LevelHandler interface
type LevelHandlerImpl struct {
	store     storage.Store
	levels    storage.LevelSource
	validator LevelValidator
	limits    models.SquadLimits
	log       logrus.FieldLogger
}

// NewLevelHandler creates a new level handler instance
func NewLevelHandler(store storage.Store, levels storage.LevelSource, validator LevelValidator, limits models.SquadLimits) LevelHandler {
	return &LevelHandlerImpl{
		store:     store,
		levels:    levels,
		validator: validator,
		limits:    limits,
		log:       logger.WithComponent("api"),
	}
}

// HandleListLevels returns every level a session can be started from
func (h *LevelHandlerImpl) HandleListLevels(c echo.Context) error {
	infos, err := h.levels.List()
	if err != nil {
		return NewInternalError("failed to list levels", err)
	}

	if source := c.QueryParam("source"); source != "" {
		filtered := infos[:0]
		for _, info := range infos {
			if info.Source == source {
				filtered = append(filtered, info)
			}
		}
		infos = filtered
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"levels": infos,
		"total":  len(infos),
	})
}

// HandleUploadLevel saves a base64 level file and trial-builds it. The file is
// kept either way; its status records whether it built.
func (h *LevelHandlerImpl) HandleUploadLevel(c echo.Context) error {
	var req levelFileRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	data, apiErr := req.decode()
	if apiErr != nil {
		return apiErr
	}

	info, err := h.store.SaveBytes(req.Name, data)
	if err != nil {
		return NewInternalError("failed to save level", err)
	}

	level, gameMap, buildErr := h.trialBuild(req.Name, data)
	status := models.FileStatusValid
	if buildErr != nil {
		status = models.FileStatusInvalid
	}
	if err := h.store.SetStatus(info.ID, status); err != nil {
		return NewInternalError("failed to record level status", err)
	}
	if updated, err := h.store.Get(info.ID); err == nil {
		info = updated
	}

	resp := uploadLevelResponse{
		File:  info,
		Valid: buildErr == nil,
		Error: buildErr,
	}
	if gameMap != nil {
		resp.Summary = summarize(level.Name, gameMap, level.Legend)
	}

	h.log.WithFields(logrus.Fields{
		"file":   info.ID,
		"name":   req.Name,
		"status": status,
	}).Info("Level uploaded")

	return c.JSON(http.StatusCreated, resp)
}

// HandleValidateLevel trial-builds a level without storing it
func (h *LevelHandlerImpl) HandleValidateLevel(c echo.Context) error {
	var req levelFileRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	data, apiErr := req.decode()
	if apiErr != nil {
		return apiErr
	}

	level, gameMap, apiErr := h.trialBuild(req.Name, data)
	if apiErr != nil {
		return apiErr
	}

	return c.JSON(http.StatusOK, validateLevelResponse{
		Valid:   true,
		Summary: summarize(level.Name, gameMap, level.Legend),
	})
}

// HandleListUploads returns uploaded level files, most recent first
func (h *LevelHandlerImpl) HandleListUploads(c echo.Context) error {
	limit := 20
	if l := c.QueryParam("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			return NewValidationError("limit")
		}
		limit = n
	}

	files, err := h.store.List(limit)
	if err != nil {
		return NewInternalError("failed to list uploads", err)
	}
	return c.JSON(http.StatusOK, files)
}

// HandleRenameUpload changes an upload's display name. The name selects the
// parser, so the level is rebuilt and its status refreshed.
func (h *LevelHandlerImpl) HandleRenameUpload(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var req renameUploadRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Name == "" {
		return NewValidationError("name")
	}
	if _, err := parser.GetGlobalRegistry().FindParser(req.Name); err != nil {
		return NewBadRequestError("unsupported level format", err)
	}

	if _, err := h.store.Rename(id, req.Name); err != nil {
		return NewNotFoundError("level upload", id)
	}

	status := models.FileStatusValid
	level, err := h.levels.Load(c.Request().Context(), id)
	if err == nil {
		_, err = h.validator.Build(level, h.limits)
	}
	if err != nil {
		status = models.FileStatusInvalid
	}
	if err := h.store.SetStatus(id, status); err != nil {
		return NewInternalError("failed to record level status", err)
	}

	info, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("level upload", id)
	}
	return c.JSON(http.StatusOK, info)
}

// HandleDeleteUpload removes an uploaded level file
func (h *LevelHandlerImpl) HandleDeleteUpload(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.store.Delete(id); err != nil {
		return NewNotFoundError("level upload", id)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *LevelHandlerImpl) trialBuild(name string, data []byte) (*models.RawLevel, *models.GameMap, *APIError) {
	level, apiErr := parseLevel(name, data)
	if apiErr != nil {
		return nil, nil, apiErr
	}
	gameMap, err := h.validator.Build(level, h.limits)
	if err != nil {
		return level, nil, NewBuildError(err)
	}
	return level, gameMap, nil
}

// parseLevel turns syntax errors into 400s and grid shape errors into 422s.
func parseLevel(name string, data []byte) (*models.RawLevel, *APIError) {
	level, err := parser.ParseLevelBytes(name, data)
	if err == nil {
		return level, nil
	}
	if errors.Is(err, models.ErrMalformedGrid) {
		return nil, NewBuildError(err)
	}
	return nil, NewBadRequestError("invalid level file", err)
}

func summarize(name string, gameMap *models.GameMap, legend map[string]string) *levelSummary {
	counts := make(map[string]int)
	for kind, n := range gameMap.CountKinds() {
		counts[kind.LegendName()] = n
	}
	summary := &levelSummary{
		Name:      name,
		Width:     gameMap.Width(),
		Height:    gameMap.Height(),
		Tiles:     gameMap.Len(),
		Counts:    counts,
		Entrances: gameMap.Entrances(),
	}
	if len(legend) > 0 {
		summary.LegendIDs = parser.LegendIDs(legend)
	}
	return summary
}

// Request/response types

type levelFileRequest struct {
	Name string `json:"name"` // file name; its extension selects the format
	Data string `json:"data"` // Base64-encoded content
}

func (r *levelFileRequest) validate() *APIError {
	if r.Name == "" {
		return NewValidationError("name")
	}
	if r.Data == "" {
		return NewValidationError("data")
	}
	if _, err := parser.GetGlobalRegistry().FindParser(r.Name); err != nil {
		return NewBadRequestError("unsupported level format", err)
	}
	return nil
}

func (r *levelFileRequest) decode() ([]byte, *APIError) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(r.Data)
	if err != nil {
		return nil, NewBadRequestError("invalid base64 data", err)
	}
	return data, nil
}

type renameUploadRequest struct {
	Name string `json:"name"`
}

type levelSummary struct {
	Name      string            `json:"name"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Tiles     int               `json:"tiles"`
	Counts    map[string]int    `json:"counts"`
	Entrances []models.Location `json:"entrances"`
	LegendIDs []string          `json:"legendIds,omitempty"`
}

type uploadLevelResponse struct {
	File    *models.FileInfo `json:"file"`
	Valid   bool             `json:"valid"`
	Error   *APIError        `json:"error,omitempty"`
	Summary *levelSummary    `json:"summary,omitempty"`
}

type validateLevelResponse struct {
	Valid   bool          `json:"valid"`
	Summary *levelSummary `json:"summary"`
}
