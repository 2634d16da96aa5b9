package device

import (
	"github.com/gin-gonic/gin"

	"github.com/amzibnewman/altrii-backend/internal/application/timer/usecases"
	"github.com/amzibnewman/altrii-backend/internal/shared/logger"
	"github.com/amzibnewman/altrii-backend/internal/shared/utils"
)

type DeviceHandler struct {
	requestInvitationUC usecases.RequestEnrollmentInvitationExecutor
	logger              logger.Interface
}

func NewDeviceHandler(requestInvitationUC usecases.RequestEnrollmentInvitationExecutor) *DeviceHandler {
	return &DeviceHandler{
		requestInvitationUC: requestInvitationUC,
		logger:              logger.NewLogger(),
	}
}

// RequestEnrollmentInvitation handles POST /devices/:deviceId/invitation
func (h *DeviceHandler) RequestEnrollmentInvitation(c *gin.Context) {
	userID, _ := c.Get("user_id")

	invitation, err := h.requestInvitationUC.Execute(c.Request.Context(), usecases.RequestEnrollmentInvitationCommand{
		UserID:    userID.(uint),
		DeviceSID: c.Param("deviceId"),
	})
	if err != nil {
		h.logger.Warnw("failed to create enrollment invitation",
			"device_sid", c.Param("deviceId"),
			"error", err,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"invitation_id":   invitation.InvitationID,
		"enrollment_url":  invitation.EnrollmentURL,
		"invitation_code": invitation.InvitationCode,
	}, "Enrollment invitation created")
}
