package stub

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-departure-alerts/internal/infra/tripsource"
)

// Handler serves a trip source API backed by Storage.
type Handler struct {
	storage *Storage
}

func NewHandler(storage *Storage) *Handler {
	return &Handler{storage: storage}
}

// Register mounts the stub routes on r.
func (h *Handler) Register(r gin.IRouter) {
	users := r.Group("/api/v1/users/:userID")
	users.GET("/bookings", h.HandleListBookings)
	users.GET("/trips", h.HandleListTrips)
	users.POST("/seed", h.HandleSeed)
	users.DELETE("/seed", h.HandleReset)
}

// DELETE /api/v1/users/:userID/seed
func (h *Handler) HandleReset(c *gin.Context) {
	userID := c.Param("userID")

	h.storage.Reset(userID)

	slog.Info("reset trip data", slog.String("user_id", userID))

	c.JSON(http.StatusOK, gin.H{
		"status":  "reset complete",
		"user_id": userID,
	})
}

// POST /api/v1/users/:userID/seed
func (h *Handler) HandleSeed(c *gin.Context) {
	userID := c.Param("userID")

	var req SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.storage.Seed(userID, req.Bookings, req.Trips)

	slog.Info("seeded trip data",
		slog.String("user_id", userID),
		slog.Int("booking_count", len(req.Bookings)),
		slog.Int("trip_count", len(req.Trips)),
	)

	c.JSON(http.StatusOK, gin.H{
		"status":        "seeded",
		"user_id":       userID,
		"booking_count": len(req.Bookings),
		"trip_count":    len(req.Trips),
	})
}

// GET /api/v1/users/:userID/bookings
func (h *Handler) HandleListBookings(c *gin.Context) {
	bookings := h.storage.Bookings(c.Param("userID"))

	c.JSON(http.StatusOK, tripsource.BookingsResponse{
		Bookings: bookings,
		Count:    len(bookings),
	})
}

// GET /api/v1/users/:userID/trips
func (h *Handler) HandleListTrips(c *gin.Context) {
	trips := h.storage.Trips(c.Param("userID"))

	c.JSON(http.StatusOK, tripsource.TripsResponse{
		Trips: trips,
		Count: len(trips),
	})
}
