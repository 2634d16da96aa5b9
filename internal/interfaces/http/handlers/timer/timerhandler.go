package timer

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amzibnewman/altrii-backend/internal/application/timer/dto"
	"github.com/amzibnewman/altrii-backend/internal/application/timer/usecases"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
	"github.com/amzibnewman/altrii-backend/internal/shared/utils"
)

type TimerHandler struct {
	createTimerUC  usecases.CreateTimerCommitmentExecutor
	getActiveUC    usecases.GetActiveTimerExecutor
	manualExpireUC usecases.ManualExpireTimerExecutor
	getLimitsUC    usecases.GetTimerLimitsExecutor
	listHistoryUC  usecases.ListTimerHistoryExecutor
	getStatsUC     usecases.GetTimerStatsExecutor
	logger         logger.Interface
}

func NewTimerHandler(
	createTimerUC usecases.CreateTimerCommitmentExecutor,
	getActiveUC usecases.GetActiveTimerExecutor,
	manualExpireUC usecases.ManualExpireTimerExecutor,
	getLimitsUC usecases.GetTimerLimitsExecutor,
	listHistoryUC usecases.ListTimerHistoryExecutor,
	getStatsUC usecases.GetTimerStatsExecutor,
) *TimerHandler {
	return &TimerHandler{
		createTimerUC:  createTimerUC,
		getActiveUC:    getActiveUC,
		manualExpireUC: manualExpireUC,
		getLimitsUC:    getLimitsUC,
		listHistoryUC:  listHistoryUC,
		getStatsUC:     getStatsUC,
		logger:         logger.NewLogger(),
	}
}

// CreateTimer handles POST /timers/:deviceId/create
func (h *TimerHandler) CreateTimer(c *gin.Context) {
	var req CreateTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create timer", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	userID, _ := c.Get("user_id")
	cmd := req.ToCommand(userID.(uint), c.Param("deviceId"))

	result, err := h.createTimerUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c,
		dto.ToTimerCommitmentDTO(result.Commitment, result.Device.SID(), result.Device.Name()),
		"Timer commitment created successfully")
}

// GetActiveTimer handles GET /timers/:deviceId
func (h *TimerHandler) GetActiveTimer(c *gin.Context) {
	userID, _ := c.Get("user_id")
	cmd := usecases.GetActiveTimerCommand{
		UserID:    userID.(uint),
		DeviceSID: c.Param("deviceId"),
	}

	result, err := h.getActiveUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{"commitment": nil}
	if result.Commitment != nil {
		response["commitment"] = dto.ToTimerCommitmentDTO(result.Commitment, result.Device.SID(), result.Device.Name())
	}
	if result.DeviceStatus != nil {
		response["device_status"] = dto.ToDeviceStatusDTO(result.DeviceStatus)
	}

	utils.OKResponse(c, response)
}

// EmergencyCancel handles POST /timers/:deviceId/emergency-cancel
func (h *TimerHandler) EmergencyCancel(c *gin.Context) {
	var req EmergencyCancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for emergency cancel", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	userID, _ := c.Get("user_id")

	active, err := h.getActiveUC.Execute(c.Request.Context(), usecases.GetActiveTimerCommand{
		UserID:    userID.(uint),
		DeviceSID: c.Param("deviceId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if active.Commitment == nil {
		utils.ErrorResponse(c, http.StatusNotFound, "no active timer commitment found")
		return
	}

	result, err := h.manualExpireUC.Execute(c.Request.Context(), usecases.ManualExpireTimerCommand{
		UserID:           userID.(uint),
		CommitmentSID:    active.Commitment.SID(),
		Reason:           req.Reason,
		ConfirmEmergency: req.ConfirmEmergency,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.OKResponse(c,
		dto.ToTimerCommitmentDTO(result, active.Device.SID(), active.Device.Name()),
		"Timer commitment cancelled")
}

// GetLimits handles GET /timers/limits
func (h *TimerHandler) GetLimits(c *gin.Context) {
	userID, _ := c.Get("user_id")

	tier, err := h.getLimitsUC.Execute(c.Request.Context(), userID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.OKResponse(c, dto.ToTimerLimitsDTO(tier))
}

// GetHistory handles GET /timers/history
func (h *TimerHandler) GetHistory(c *gin.Context) {
	req := parseListHistoryRequest(c)

	userID, _ := c.Get("user_id")
	result, err := h.listHistoryUC.Execute(c.Request.Context(), req.ToCommand(userID.(uint)))
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]*dto.TimerCommitmentDTO, 0, len(result.Items))
	for _, item := range result.Items {
		deviceSID, deviceName := "", ""
		if item.Device != nil {
			deviceSID, deviceName = item.Device.SID(), item.Device.Name()
		}
		items = append(items, dto.ToTimerCommitmentDTO(item.Commitment, deviceSID, deviceName))
	}

	utils.ListSuccessResponse(c, items, result.Total, req.Page, req.PageSize)
}

// GetStats handles GET /timers/stats
func (h *TimerHandler) GetStats(c *gin.Context) {
	stats, err := h.getStatsUC.Execute(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.OKResponse(c, stats)
}
