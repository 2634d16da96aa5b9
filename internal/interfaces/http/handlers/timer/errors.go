package timer

import (
	"errors"

	"github.com/gin-gonic/gin"

	domaintimer "github.com/amzibnewman/altrii-backend/internal/domain/timer"
	apperrors "github.com/amzibnewman/altrii-backend/internal/shared/errors"
	"github.com/amzibnewman/altrii-backend/internal/shared/utils"
)

// respondError translates domain sentinel errors into the API error
// envelope. Errors that already carry an AppError (validation, provider
// failures) pass through untouched.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domaintimer.ErrCommitmentNotFound):
		err = apperrors.NewNotFoundError(err.Error())
	case errors.Is(err, domaintimer.ErrActiveCommitmentExists):
		err = apperrors.NewConflictError(err.Error())
	case errors.Is(err, domaintimer.ErrInvalidStatusTransition):
		err = apperrors.NewConflictError(err.Error())
	case errors.Is(err, domaintimer.ErrCommitmentConflict):
		err = apperrors.NewConflictError(err.Error())
	case errors.Is(err, domaintimer.ErrDeviceNotEnrolled):
		err = apperrors.NewBadRequestError(err.Error())
	case errors.Is(err, domaintimer.ErrConfirmationRequired):
		err = apperrors.NewValidationError(err.Error())
	case errors.Is(err, domaintimer.ErrSubscriptionRequired):
		err = apperrors.NewForbiddenError(err.Error())
	}

	utils.ErrorResponseWithError(c, err)
}
