package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campusride/internal/service"
)

// StatsHandler handles HTTP requests for driver earnings summaries.
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// DriverStatsResponse is the HTTP response for driver stats.
type DriverStatsResponse struct {
	TotalRides      int            `json:"total_rides"`
	TotalEarnings   int            `json:"total_earnings"`
	DailyEarnings   map[string]int `json:"daily_earnings"`
	WeeklyEarnings  map[string]int `json:"weekly_earnings"`
	MonthlyEarnings map[string]int `json:"monthly_earnings"`
	Rides           []RideResponse `json:"rides,omitempty"`
}

// GetDriverStats handles GET /v1/drivers/:id/stats
func (h *StatsHandler) GetDriverStats(c *gin.Context) {
	driverID := c.Param("id")
	includeRides := c.Query("include_rides") == "true"

	stats, err := h.statsService.GetDriverStats(c.Request.Context(), driverID, includeRides)
	if err != nil {
		respondError(c, err)
		return
	}

	response := DriverStatsResponse{
		TotalRides:      stats.TotalRides,
		TotalEarnings:   stats.TotalEarnings,
		DailyEarnings:   stats.DailyEarnings,
		WeeklyEarnings:  stats.WeeklyEarnings,
		MonthlyEarnings: stats.MonthlyEarnings,
	}

	viewer := actingUser(c)
	for _, ride := range stats.Rides {
		response.Rides = append(response.Rides, rideResponse(ride, nil, viewer))
	}

	respondJSON(c, http.StatusOK, response)
}
