package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/rock-radar/internal/domain"
	apperrors "github.com/rock-radar/internal/pkg/errors"
	"github.com/rock-radar/internal/pkg/utils"
	"github.com/rock-radar/internal/pkg/validator"
	"github.com/rock-radar/internal/usecase"
	"github.com/rock-radar/internal/usecase/dto"
)

// RadarHandler - обработчик запросов к дереву районов и настройкам ранжирования
type RadarHandler struct {
	radarUC *usecase.RadarUseCase
	logger  *zap.Logger
}

// NewRadarHandler - создание нового RadarHandler
func NewRadarHandler(radarUC *usecase.RadarUseCase, logger *zap.Logger) *RadarHandler {
	return &RadarHandler{
		radarUC: radarUC,
		logger:  logger,
	}
}

// GetRoot godoc
// @Summary Get root area
// @Description Корень дерева с отсортированными детьми и значениями выбранной метрики
// @Tags Areas
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.AreaView}
// @Router /api/v1/areas/root [get]
func (h *RadarHandler) GetRoot(c *fiber.Ctx) error {
	view, err := h.radarUC.GetArea(c.Context(), h.radarUC.RootID())
	if err != nil {
		return utils.SendError(c, err)
	}
	return h.sendArea(c, view)
}

// GetArea godoc
// @Summary Get area by ID
// @Tags Areas
// @Produce json
// @Param id path int true "Area ID"
// @Success 200 {object} utils.SuccessResponse{data=dto.AreaView}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/areas/{id} [get]
func (h *RadarHandler) GetArea(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	view, err := h.radarUC.GetArea(c.Context(), domain.AreaID(id))
	if err != nil {
		return utils.SendError(c, err)
	}
	return h.sendArea(c, view)
}

// GetAreaByPath godoc
// @Summary Find area by path
// @Description Путь от корня через "/", например USA/California/Joshua Tree
// @Tags Areas
// @Produce json
// @Param path query string true "Area path"
// @Success 200 {object} utils.SuccessResponse{data=dto.AreaView}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/areas/by-path [get]
func (h *RadarHandler) GetAreaByPath(c *fiber.Ctx) error {
	raw := strings.Trim(c.Query("path"), "/")
	if raw == "" {
		return utils.SendError(c, apperrors.Newf(apperrors.ErrInvalidRequest, "path is required"))
	}

	view, err := h.radarUC.GetAreaByPath(c.Context(), strings.Split(raw, "/"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return h.sendArea(c, view)
}

// MoveArea godoc
// @Summary Move area under another parent
// @Description Возвращает нового родителя; статистика и сортировка пересчитываются
// @Tags Areas
// @Accept json
// @Produce json
// @Param id path int true "Area ID"
// @Param request body dto.MoveAreaRequest true "New parent"
// @Success 200 {object} utils.SuccessResponse{data=dto.AreaView}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/areas/{id}/parent [put]
func (h *RadarHandler) MoveArea(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	var req dto.MoveAreaRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	view, err := h.radarUC.MoveArea(c.Context(), domain.AreaID(id), domain.AreaID(*req.ParentID))
	if err != nil {
		h.logger.Debug("Move rejected", zap.Int("area_id", id), zap.Error(err))
		return utils.SendError(c, err)
	}
	return h.sendArea(c, view)
}

func (h *RadarHandler) sendArea(c *fiber.Ctx, view *dto.AreaView) error {
	return utils.SendSuccess(c, view, &utils.Meta{
		Total:    len(view.SubAreas) + len(view.Routes),
		Snapshot: h.radarUC.Settings(c.Context()).Snapshot,
	})
}

// GetRoute godoc
// @Summary Get route by ID
// @Tags Routes
// @Produce json
// @Param id path int true "Route ID"
// @Success 200 {object} utils.SuccessResponse{data=dto.RouteView}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/routes/{id} [get]
func (h *RadarHandler) GetRoute(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	view, err := h.radarUC.GetRoute(c.Context(), domain.RouteID(id))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, view, nil)
}

// GetSettings godoc
// @Summary Get ranking settings
// @Tags Settings
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.SettingsResponse}
// @Router /api/v1/settings [get]
func (h *RadarHandler) GetSettings(c *fiber.Ctx) error {
	return utils.SendSuccess(c, h.radarUC.Settings(c.Context()), nil)
}

// GetOptions godoc
// @Summary Get allowed setting values
// @Description Ключи сортировки, модели, типы маршрутов дерева и шкала категорий
// @Tags Settings
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.OptionsResponse}
// @Router /api/v1/options [get]
func (h *RadarHandler) GetOptions(c *fiber.Ctx) error {
	return utils.SendSuccess(c, h.radarUC.Options(c.Context()), nil)
}

// SetFilter godoc
// @Summary Update route filter
// @Description Отсутствующие поля не меняются; после изменения статистика пересчитывается
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body dto.FilterRequest true "Filter changes"
// @Success 200 {object} utils.SuccessResponse{data=dto.SettingsResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/settings/filter [put]
func (h *RadarHandler) SetFilter(c *fiber.Ctx) error {
	var req dto.FilterRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	settings, err := h.radarUC.SetFilter(c.Context(), req)
	if err != nil {
		h.logger.Debug("Filter rejected", zap.Error(err))
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, settings, nil)
}

// SetModel godoc
// @Summary Select ranking model
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body dto.ModelRequest true "Model"
// @Success 200 {object} utils.SuccessResponse{data=dto.SettingsResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/settings/model [put]
func (h *RadarHandler) SetModel(c *fiber.Ctx) error {
	var req dto.ModelRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	settings, err := h.radarUC.SetRankingModel(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, settings, nil)
}

// SetSort godoc
// @Summary Set sort keys
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body dto.SortRequest true "Sort keys"
// @Success 200 {object} utils.SuccessResponse{data=dto.SettingsResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/settings/sort [put]
func (h *RadarHandler) SetSort(c *fiber.Ctx) error {
	var req dto.SortRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	settings, err := h.radarUC.SetSortKeys(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, settings, nil)
}

// SetMetrics godoc
// @Summary Set displayed metrics
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body dto.MetricsRequest true "Metrics"
// @Success 200 {object} utils.SuccessResponse{data=dto.SettingsResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/settings/metrics [put]
func (h *RadarHandler) SetMetrics(c *fiber.Ctx) error {
	var req dto.MetricsRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	settings, err := h.radarUC.SetMetrics(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, settings, nil)
}

// Refresh godoc
// @Summary Recalculate stats
// @Description Пересчитывает статистику, сортирует и возвращает корень нового snapshot
// @Tags Settings
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.RefreshResponse}
// @Router /api/v1/refresh [post]
func (h *RadarHandler) Refresh(c *fiber.Ctx) error {
	return utils.SendSuccess(c, h.radarUC.Refresh(c.Context()), nil)
}

// paramID разбирает неотрицательный числовой параметр пути
func paramID(c *fiber.Ctx, name string) (int, error) {
	id, err := strconv.Atoi(c.Params(name))
	if err != nil || id < 0 {
		return 0, apperrors.Newf(apperrors.ErrInvalidRequest, "invalid %s: %q", name, c.Params(name))
	}
	return id, nil
}

// parseBody разбирает JSON тело и валидирует его
func parseBody(c *fiber.Ctx, dest interface{}) error {
	if err := c.BodyParser(dest); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidRequest, err)
	}
	return validator.ValidateRequest(dest)
}
