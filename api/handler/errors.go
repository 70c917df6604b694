package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/webstruct/models"
)

// respondError writes resp with the HTTP status mapped from err.
func respondError(c *gin.Context, err error, resp *models.ScrapeResponse) {
	scrapeErr := asScrapeError(err)
	if resp == nil {
		resp = &models.ScrapeResponse{}
	}
	resp.Success = false
	resp.Error = scrapeErr.ToDetail()
	c.JSON(mapErrorToStatus(scrapeErr), resp)
}

// invalidInput writes a 400 for a request that failed binding.
func invalidInput(c *gin.Context, err error) {
	respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, err.Error(), err), nil)
}

func asScrapeError(err error) *models.ScrapeError {
	var scrapeErr *models.ScrapeError
	if errors.As(err, &scrapeErr) {
		return scrapeErr
	}
	return models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation, models.ErrCodeFetch, models.ErrCodeBrowserCrash:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeExtraction:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
