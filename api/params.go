package api

import (
	"strconv"

	"tombola/models"

	"github.com/gin-gonic/gin"
)

// pathID parses a positive int64 path parameter
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "%s must be a positive integer", name)
		return 0, false
	}
	return id, true
}

// optionalQueryID parses an optional positive int64 query parameter
func optionalQueryID(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "%s must be a positive integer", name)
		return nil, false
	}
	return &id, true
}

// pageFromQuery reads page and pageSize; the service clamps them
func pageFromQuery(c *gin.Context) (models.Page, bool) {
	var page models.Page
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"page", &page.Number},
		{"pageSize", &page.Size},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "%s must be an integer", p.name)
			return models.Page{}, false
		}
		if p.name == "page" && n > models.MaxPageNumber {
			badRequest(c, "page must be at most %d", models.MaxPageNumber)
			return models.Page{}, false
		}
		*p.dst = n
	}
	return page, true
}

func participationStatusFromQuery(c *gin.Context) *models.ParticipationStatus {
	raw := c.Query("status")
	if raw == "" {
		return nil
	}
	status := models.ParticipationStatus(raw)
	return &status
}

func raffleStatusFromQuery(c *gin.Context) *models.RaffleStatus {
	raw := c.Query("status")
	if raw == "" {
		return nil
	}
	status := models.RaffleStatus(raw)
	return &status
}
