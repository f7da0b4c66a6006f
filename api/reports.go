package api

import (
	"net/http"
	"time"

	"github.com/avolare/skybook/internal/service/reports"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	service reports.ReportUseCase
}

func NewReportHandler(service reports.ReportUseCase) *ReportHandler {
	return &ReportHandler{service: service}
}

func (h *ReportHandler) Register(admin *gin.RouterGroup) {
	admin.GET("/reports/bookings", h.bookingReport)
	admin.GET("/bookings", h.allBookings)
}

func (h *ReportHandler) bookingReport(c *gin.Context) {
	var from, to *time.Time
	if fromRaw, toRaw := c.Query("from_date"), c.Query("to_date"); fromRaw != "" && toRaw != "" {
		f, err := parseSearchDate(fromRaw)
		if err != nil {
			respondError(c, err)
			return
		}
		t, err := parseSearchDate(toRaw)
		if err != nil {
			respondError(c, err)
			return
		}
		from, to = &f, &t
	}

	stats, err := h.service.BookingReport(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ReportHandler) allBookings(c *gin.Context) {
	bookings, err := h.service.AllBookings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
