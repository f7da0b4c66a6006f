package api

import (
	"io"
	"net/http"

	"github.com/avolare/skybook/internal/domain"
	"github.com/avolare/skybook/internal/service/payments"
	"github.com/gin-gonic/gin"
)

const signatureHeader = "Stripe-Signature"

type PaymentHandler struct {
	service payments.PaymentUseCase
}

func NewPaymentHandler(service payments.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Register(authed *gin.RouterGroup, webhook *gin.RouterGroup) {
	authed.POST("/create-checkout", h.createCheckout)
	authed.GET("/status/:session_id", h.status)
	webhook.POST("/stripe", h.webhook)
}

func (h *PaymentHandler) createCheckout(c *gin.Context) {
	bookingID := c.Query("booking_id")
	originURL := c.Query("origin_url")
	if bookingID == "" || originURL == "" {
		respondError(c, domain.InvalidStateError{Msg: "booking_id and origin_url are required"})
		return
	}

	result, err := h.service.CreateCheckout(c.Request.Context(), bookingID, originURL, CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// status deliberately performs no ownership scoping: sessions are looked up
// by provider id, any authenticated user may poll one.
func (h *PaymentHandler) status(c *gin.Context) {
	result, err := h.service.PollStatus(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// webhook must answer non-2xx on any processing fault so the provider
// redelivers the event.
func (h *PaymentHandler) webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	if err := h.service.HandleWebhook(c.Request.Context(), body, c.GetHeader(signatureHeader)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
