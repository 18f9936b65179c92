package middleware

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/pratik-mahalle/tasknest/internal/api/dto"
	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/pratik-mahalle/tasknest/internal/pkg/errors"
	"github.com/pratik-mahalle/tasknest/internal/pkg/utils"
)

// TranslateError maps domain errors to API errors
func TranslateError(err error) *errors.AppError {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var quotaErr *account.QuotaExceededError
	switch {
	case stderrors.As(err, &quotaErr):
		return errors.QuotaExceeded(quotaMessage(quotaErr), dto.ToQuotaExceededDetails(quotaErr))
	case stderrors.Is(err, account.ErrNotFound):
		return errors.New(errors.ErrCodeAccountNotFound, "Account not found", http.StatusNotFound)
	case stderrors.Is(err, account.ErrNotPaidTier), stderrors.Is(err, account.ErrInvalidTier):
		return errors.BadRequest(err.Error())
	case stderrors.Is(err, account.ErrStateChanged):
		return errors.Conflict("Account changed concurrently, retry the request")
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.ServiceUnavailable("Request timed out")
	}

	return errors.Internal("Internal server error", err)
}

// WriteError writes any error using TranslateError
func WriteError(w http.ResponseWriter, err error) {
	utils.WriteError(w, TranslateError(err))
}

func quotaMessage(e *account.QuotaExceededError) string {
	switch e.Decision.Pool {
	case account.PoolMonthly:
		return "Monthly AI limit reached. Upgrade to " + string(e.RequiredTier) + " for unlimited usage."
	default:
		return "Daily AI limit reached. Upgrade to " + string(e.RequiredTier) + " for more usage."
	}
}
