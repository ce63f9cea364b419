package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/rock-radar/internal/pkg/utils"
	"github.com/rock-radar/internal/usecase"
	"github.com/rock-radar/internal/usecase/dto"
)

// RegionHandler - обработчик загрузки регионов источника
type RegionHandler struct {
	regionUC *usecase.RegionUseCase
	logger   *zap.Logger
}

// NewRegionHandler - создание нового RegionHandler
func NewRegionHandler(regionUC *usecase.RegionUseCase, logger *zap.Logger) *RegionHandler {
	return &RegionHandler{
		regionUC: regionUC,
		logger:   logger,
	}
}

// ListRegions godoc
// @Summary List source regions
// @Description По умолчанию только незагруженные регионы; all=true - все
// @Tags Regions
// @Produce json
// @Param all query bool false "Include loaded regions"
// @Success 200 {object} utils.SuccessResponse{data=[]dto.RegionView}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/regions [get]
func (h *RegionHandler) ListRegions(c *fiber.Ctx) error {
	var (
		regions []dto.RegionView
		err     error
	)
	if c.QueryBool("all") {
		regions, err = h.regionUC.List(c.Context())
	} else {
		regions, err = h.regionUC.Available(c.Context())
	}
	if err != nil {
		h.logger.Error("Failed to list regions", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, regions, &utils.Meta{
		Total: len(regions),
	})
}

// ImportRegion godoc
// @Summary Import region into the tree
// @Description async=true ставит загрузку в очередь Redis Stream и возвращает event_id
// @Tags Regions
// @Accept json
// @Produce json
// @Param request body dto.ImportRequest true "Region"
// @Success 200 {object} utils.SuccessResponse{data=dto.ImportResponse}
// @Success 202 {object} utils.SuccessResponse{data=dto.ImportResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/regions/import [post]
func (h *RegionHandler) ImportRegion(c *fiber.Ctx) error {
	var req dto.ImportRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	if req.Async {
		resp, err := h.regionUC.RequestImport(c.Context(), req.Region)
		if err != nil {
			return utils.SendError(c, err)
		}
		c.Status(fiber.StatusAccepted)
		return utils.SendSuccess(c, resp, nil)
	}

	resp, err := h.regionUC.Import(c.Context(), req.Region)
	if err != nil {
		h.logger.Warn("Region import failed", zap.String("region", req.Region), zap.Error(err))
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, &utils.Meta{
		Total: resp.TotalRoutes,
	})
}
