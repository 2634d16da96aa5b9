package timer

import (
	"github.com/gin-gonic/gin"

	"github.com/amzibnewman/altrii-backend/internal/application/timer/usecases"
	"github.com/amzibnewman/altrii-backend/internal/shared/utils"
)

type CreateTimerRequest struct {
	CommitmentDays       int  `json:"commitment_days" validate:"required,min=1,max=365"`
	ConfirmUnderstanding bool `json:"confirm_understanding"`
}

func (r *CreateTimerRequest) ToCommand(userID uint, deviceSID string) usecases.CreateTimerCommitmentCommand {
	return usecases.CreateTimerCommitmentCommand{
		UserID:               userID,
		DeviceSID:            deviceSID,
		CommitmentDays:       r.CommitmentDays,
		ConfirmUnderstanding: r.ConfirmUnderstanding,
	}
}

type EmergencyCancelRequest struct {
	Reason           string `json:"reason" validate:"required,min=10,max=500"`
	ConfirmEmergency bool   `json:"confirm_emergency"`
}

type ListHistoryRequest struct {
	Page     int
	PageSize int
	Status   *string
}

func (r *ListHistoryRequest) ToCommand(userID uint) usecases.ListTimerHistoryCommand {
	return usecases.ListTimerHistoryCommand{
		UserID:   userID,
		Status:   r.Status,
		Page:     r.Page,
		PageSize: r.PageSize,
	}
}

func parseListHistoryRequest(c *gin.Context) *ListHistoryRequest {
	pagination := utils.ParsePagination(c)

	req := &ListHistoryRequest{
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	}

	if status := c.Query("status"); status != "" {
		req.Status = &status
	}

	return req
}
