package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campusride/internal/domain"
	"campusride/internal/service"
)

// RideHandler handles HTTP requests for rides and their lifecycle.
type RideHandler struct {
	rideService      *service.RideService
	lifecycleService *service.LifecycleService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService, lifecycleService *service.LifecycleService) *RideHandler {
	return &RideHandler{
		rideService:      rideService,
		lifecycleService: lifecycleService,
	}
}

// EstimateFareRequest is the HTTP request body for a fare estimate.
type EstimateFareRequest struct {
	SourceLat   float64 `json:"source_lat"`
	SourceLng   float64 `json:"source_lng"`
	DestLat     float64 `json:"dest_lat"`
	DestLng     float64 `json:"dest_lng"`
	VehicleType string  `json:"vehicle_type,omitempty"` // Car, Bike
}

// EstimateFareResponse is the HTTP response for a fare estimate.
type EstimateFareResponse struct {
	DistanceKm         float64 `json:"distance_km"`
	DurationMin        int     `json:"duration_min"`
	RoutingSource      string  `json:"routing_source"`
	RiderCost          int     `json:"rider_cost"`
	DriverEarnings     int     `json:"driver_earnings"`
	BaseFare           int     `json:"base_fare"`
	DistanceFare       int     `json:"distance_fare"`
	TimeFare           int     `json:"time_fare"`
	MinimumFareApplied bool    `json:"minimum_fare_applied"`
	PlatformFee        int     `json:"platform_fee"`
}

// CreateRideRequest is the HTTP request body for posting a ride.
type CreateRideRequest struct {
	Source         string  `json:"source"`
	Destination    string  `json:"destination"`
	Date           string  `json:"date"` // YYYY-MM-DD
	Time           string  `json:"time"` // HH:MM
	AvailableSeats int     `json:"available_seats"`
	VehicleType    string  `json:"vehicle_type,omitempty"`
	SourceLat      float64 `json:"source_lat,omitempty"`
	SourceLng      float64 `json:"source_lng,omitempty"`
	DestLat        float64 `json:"dest_lat,omitempty"`
	DestLng        float64 `json:"dest_lng,omitempty"`
}

// RespondToRequestRequest is the HTTP request body for resolving a join
// request.
type RespondToRequestRequest struct {
	RideID  string `json:"ride_id"`
	RiderID string `json:"rider_id"`
	Action  string `json:"action"` // accept, reject
}

// VerifyOTPRequest is the HTTP request body for confirming a pickup.
type VerifyOTPRequest struct {
	OTP string `json:"otp"`
}

// UserRef is a user reference resolved to display fields.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// PassengerResponse is the passenger sub-state in ride responses. The OTP is
// present only for the ride owner and the passenger it was issued to.
type PassengerResponse struct {
	Rider      UserRef `json:"rider"`
	OTP        string  `json:"otp,omitempty"`
	Status     string  `json:"status"`
	PickedUpAt string  `json:"picked_up_at,omitempty"`
	DroppedAt  string  `json:"dropped_at,omitempty"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID             string              `json:"id"`
	Source         string              `json:"source"`
	Destination    string              `json:"destination"`
	SourceLat      float64             `json:"source_lat,omitempty"`
	SourceLng      float64             `json:"source_lng,omitempty"`
	DestLat        float64             `json:"dest_lat,omitempty"`
	DestLng        float64             `json:"dest_lng,omitempty"`
	Date           string              `json:"date"`
	Time           string              `json:"time"`
	AvailableSeats int                 `json:"available_seats"`
	VehicleType    string              `json:"vehicle_type"`
	CreatedBy      UserRef             `json:"created_by"`
	DistanceKm     float64             `json:"distance_km"`
	DurationMin    int                 `json:"duration_min"`
	Price          int                 `json:"price"`
	DriverEarnings int                 `json:"driver_earnings"`
	PendingRiders  []UserRef           `json:"pending_riders"`
	Riders         []UserRef           `json:"riders"`
	Passengers     []PassengerResponse `json:"passengers"`
	CreatedAt      string              `json:"created_at"`
}

// EstimateFare handles POST /v1/rides/estimate
func (h *RideHandler) EstimateFare(c *gin.Context) {
	var req EstimateFareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.rideService.EstimateFare(c.Request.Context(), service.EstimateFareRequest{
		SourceLat:   req.SourceLat,
		SourceLng:   req.SourceLng,
		DestLat:     req.DestLat,
		DestLng:     req.DestLng,
		VehicleType: req.VehicleType,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, EstimateFareResponse{
		DistanceKm:         result.DistanceKm,
		DurationMin:        result.DurationMin,
		RoutingSource:      result.RoutingSource,
		RiderCost:          result.Quote.RiderCost,
		DriverEarnings:     result.Quote.DriverEarnings,
		BaseFare:           result.Quote.Breakdown.BaseFare,
		DistanceFare:       result.Quote.Breakdown.DistanceFare,
		TimeFare:           result.Quote.Breakdown.TimeFare,
		MinimumFareApplied: result.Quote.Breakdown.MinimumFareApplied,
		PlatformFee:        result.Quote.Breakdown.PlatformFee,
	})
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), service.CreateRideRequest{
		CreatedBy:      actingUser(c),
		Source:         req.Source,
		Destination:    req.Destination,
		Date:           date,
		Time:           req.Time,
		AvailableSeats: req.AvailableSeats,
		VehicleType:    req.VehicleType,
		SourceLat:      req.SourceLat,
		SourceLng:      req.SourceLng,
		DestLat:        req.DestLat,
		DestLng:        req.DestLng,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, rideResponse(ride, nil, actingUser(c)))
}

// ListRides handles GET /v1/rides
func (h *RideHandler) ListRides(c *gin.Context) {
	result, err := h.rideService.ListRides(c.Request.Context(), service.ListRidesRequest{
		ActiveOnly:  c.Query("active") == "true",
		Source:      c.Query("source"),
		Destination: c.Query("destination"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	viewer := actingUser(c)
	response := make([]RideResponse, 0, len(result.Rides))
	for _, ride := range result.Rides {
		response = append(response, rideResponse(ride, result.Users, viewer))
	}

	respondJSON(c, http.StatusOK, response)
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, users, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, rideResponse(ride, users, actingUser(c)))
}

// DeleteRide handles DELETE /v1/rides/:id
func (h *RideHandler) DeleteRide(c *gin.Context) {
	rideID := c.Param("id")

	if err := h.rideService.DeleteRide(c.Request.Context(), rideID, actingUser(c)); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"id": rideID})
}

// JoinRide handles POST /v1/rides/:id/join
func (h *RideHandler) JoinRide(c *gin.Context) {
	ride, err := h.lifecycleService.RequestToJoin(c.Request.Context(), c.Param("id"), actingUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, rideResponse(ride, nil, actingUser(c)))
}

// RespondToRequest handles POST /v1/rides/respond
func (h *RideHandler) RespondToRequest(c *gin.Context) {
	var req RespondToRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.lifecycleService.RespondToRequest(c.Request.Context(), service.RespondRequest{
		RideID:       req.RideID,
		ActingUserID: actingUser(c),
		RiderID:      req.RiderID,
		Action:       req.Action,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, rideResponse(ride, nil, actingUser(c)))
}

// VerifyOTP handles POST /v1/rides/:id/verify-otp
func (h *RideHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.lifecycleService.VerifyOTP(c.Request.Context(), c.Param("id"), actingUser(c), req.OTP)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"message": "passenger onboard",
		"ride":    rideResponse(ride, nil, actingUser(c)),
	})
}

// userRef resolves a user reference to display fields, degrading to the bare
// ID when the user was not loaded.
func userRef(id string, users map[string]*domain.User) UserRef {
	if user, ok := users[id]; ok {
		return UserRef{ID: user.ID, Name: user.Name, Email: user.Email, Phone: user.Phone}
	}
	return UserRef{ID: id}
}

// rideResponse builds the HTTP view of a ride for a given viewer. A
// passenger's OTP is disclosed only to the ride owner (for verification) and
// to that passenger.
func rideResponse(ride *domain.Ride, users map[string]*domain.User, viewerID string) RideResponse {
	response := RideResponse{
		ID:             ride.ID,
		Source:         ride.Source,
		Destination:    ride.Destination,
		SourceLat:      ride.SourceLat,
		SourceLng:      ride.SourceLng,
		DestLat:        ride.DestLat,
		DestLng:        ride.DestLng,
		Date:           ride.Date.Format("2006-01-02"),
		Time:           ride.Time,
		AvailableSeats: ride.AvailableSeats,
		VehicleType:    string(ride.VehicleType),
		CreatedBy:      userRef(ride.CreatedBy, users),
		DistanceKm:     ride.DistanceKm,
		DurationMin:    ride.DurationMin,
		Price:          ride.Price,
		DriverEarnings: ride.DriverEarnings,
		PendingRiders:  make([]UserRef, 0, len(ride.PendingRiders)),
		Riders:         make([]UserRef, 0, len(ride.Riders)),
		Passengers:     make([]PassengerResponse, 0, len(ride.Passengers)),
		CreatedAt:      ride.CreatedAt.Format(time.RFC3339),
	}

	for _, id := range ride.PendingRiders {
		response.PendingRiders = append(response.PendingRiders, userRef(id, users))
	}
	for _, id := range ride.Riders {
		response.Riders = append(response.Riders, userRef(id, users))
	}

	for _, p := range ride.Passengers {
		passenger := PassengerResponse{
			Rider:  userRef(p.RiderID, users),
			Status: string(p.Status),
		}
		if viewerID != "" && (viewerID == ride.CreatedBy || viewerID == p.RiderID) {
			passenger.OTP = p.OTP
		}
		if !p.PickedUpAt.IsZero() {
			passenger.PickedUpAt = p.PickedUpAt.Format(time.RFC3339)
		}
		if !p.DroppedAt.IsZero() {
			passenger.DroppedAt = p.DroppedAt.Format(time.RFC3339)
		}
		response.Passengers = append(response.Passengers, passenger)
	}

	return response
}
