package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/squadline/squadline-backend/internal/attendance"
	authdomain "github.com/squadline/squadline-backend/internal/auth/domain"
	"github.com/squadline/squadline-backend/internal/board"
	"github.com/squadline/squadline-backend/internal/dates"
	"github.com/squadline/squadline-backend/internal/events/domain"
	"github.com/squadline/squadline-backend/internal/locations"
	"github.com/squadline/squadline-backend/internal/ordering"
	teamdomain "github.com/squadline/squadline-backend/internal/teams/domain"
	"github.com/squadline/squadline-backend/internal/tickets"
	"github.com/squadline/squadline-backend/internal/validation"
)

// StatusFor maps a service error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, validation.ErrValidation),
		errors.Is(err, dates.ErrInvalidDate),
		errors.Is(err, dates.ErrInvalidTime),
		errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidMemberID),
		errors.Is(err, domain.ErrInvalidFilter),
		errors.Is(err, domain.ErrInvalidWeeks),
		errors.Is(err, domain.ErrBulkUnsupported),
		errors.Is(err, domain.ErrNotOrderable),
		errors.Is(err, ordering.ErrIndexOutOfRange),
		errors.Is(err, teamdomain.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, authdomain.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, authdomain.ErrForbidden),
		errors.Is(err, authdomain.ErrNoTeam):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, attendance.ErrNotOnCard),
		errors.Is(err, board.ErrMessageNotFound),
		errors.Is(err, locations.ErrLocationNotFound),
		errors.Is(err, teamdomain.ErrTeamNotFound),
		errors.Is(err, teamdomain.ErrMemberNotFound):
		return http.StatusNotFound
	case errors.Is(err, teamdomain.ErrAlreadyInTeam),
		errors.Is(err, teamdomain.ErrLastAdmin):
		return http.StatusConflict
	case errors.Is(err, tickets.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// WriteError renders err as {"error": "..."} with the status from
// StatusFor. Validation errors also carry their field errors. Server
// errors are logged and their details hidden.
func WriteError(c *gin.Context, err error) {
	status := StatusFor(err)
	body := gin.H{"error": err.Error()}

	var verr *validation.Error
	if errors.As(err, &verr) {
		body["field_errors"] = verr.FieldErrors
	}
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
		body["error"] = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, body)
}

// BadRequest renders a malformed request body.
func BadRequest(c *gin.Context, details string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": details})
}
