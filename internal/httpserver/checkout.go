package httpserver

import (
	"context"
	"errors"
	"net/http"

	"fluxo-storefront/internal/domain"
	checkoutsvc "fluxo-storefront/internal/service/checkout"
	"fluxo-storefront/internal/validate"
	"github.com/gin-gonic/gin"
)

type methodRequest struct {
	PaymentMethod domain.PaymentMethod `json:"paymentMethod" binding:"required"`
}

func checkoutSession(c *gin.Context) checkoutsvc.Session {
	sess := checkoutsvc.Session{ID: sessionID(c)}
	if p, ok := profileFrom(c); ok {
		sess.Profile = &p
	}
	return sess
}

func (h *handlers) getCheckout(c *gin.Context) {
	view, err := h.deps.CheckoutSvc.Get(c.Request.Context(), checkoutSession(c))
	h.writeView(c, view, err)
}

func (h *handlers) updateBuyer(c *gin.Context) {
	var patch checkoutsvc.BuyerPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	view, err := h.deps.CheckoutSvc.UpdateBuyer(c.Request.Context(), checkoutSession(c), patch)
	h.writeView(c, view, err)
}

func (h *handlers) updateCard(c *gin.Context) {
	var patch checkoutsvc.CardPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	view, err := h.deps.CheckoutSvc.UpdateCard(c.Request.Context(), checkoutSession(c), patch)
	h.writeView(c, view, err)
}

func (h *handlers) selectMethod(c *gin.Context) {
	var req methodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paymentMethod required"})
		return
	}
	view, err := h.deps.CheckoutSvc.SelectMethod(c.Request.Context(), checkoutSession(c), req.PaymentMethod)
	h.writeView(c, view, err)
}

func (h *handlers) advanceCheckout(c *gin.Context) {
	view, err := h.deps.CheckoutSvc.Advance(c.Request.Context(), checkoutSession(c))
	h.writeView(c, view, err)
}

func (h *handlers) checkoutAction(action func(context.Context, checkoutsvc.Session) (*checkoutsvc.View, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := action(c.Request.Context(), checkoutSession(c))
		h.writeView(c, view, err)
	}
}

// writeView answers with the checkout view. Validation failures and the
// not-idle guard still carry the view so clients can render the current step.
func (h *handlers) writeView(c *gin.Context, view *checkoutsvc.View, err error) {
	if err == nil {
		c.JSON(http.StatusOK, view)
		return
	}
	if view == nil {
		h.writeError(c, err)
		return
	}
	body := gin.H{"error": err.Error(), "checkout": view}
	var fieldErr *validate.FieldError
	if errors.As(err, &fieldErr) {
		body["error"] = fieldErr.Message
		body["field"] = fieldErr.Field
		body["message"] = fieldErr.Message
	}
	c.JSON(statusFor(err), body)
}
