package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/webstruct/models"
)

// Scrape returns a handler for POST /api/v1/scrape.
//
// Flow:
//  1. Bind and validate the request, apply defaults.
//  2. Serve the StructuredDocument from cache when max_age allows.
//  3. Otherwise fetch with the selected method and extract.
//  4. Summarize and classify unless skip_analysis is set.
func Scrape(p *Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err)
			return
		}
		req.Defaults()

		resp, err := p.Scrape(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err, resp)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// Parse returns a handler for POST /api/v1/parse. The body is a page the
// caller already fetched; nothing is loaded over the network.
func Parse(p *Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ParseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err)
			return
		}

		resp, err := p.Parse(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err, resp)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
