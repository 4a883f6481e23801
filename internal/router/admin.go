package router

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"musicosbooking.pt/api/pkg/apperr"
	"musicosbooking.pt/api/pkg/global"
)

const maxPendingLimit = 500

var errInvalidLimit = apperr.Validation("invalid_limit", "Parâmetro limit inválido").WithField("limit")

// ConfirmPayment marks a pending order as paid after the back office has
// checked the transfer.
func (h *Handler) ConfirmPayment(c *gin.Context) {
	order, err := h.Checkout.ConfirmPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(order))
}

func (h *Handler) ConfirmOrder(c *gin.Context) {
	order, err := h.Checkout.ConfirmOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(order))
}

func (h *Handler) ListPendingOrders(c *gin.Context) {
	var limit int64
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > maxPendingLimit {
			respondError(c, errInvalidLimit)
			return
		}
		limit = n
	}
	orders, err := h.Checkout.ListPending(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Total-Count", strconv.Itoa(len(orders)))
	c.JSON(http.StatusOK, global.SuccessResponse(orders))
}

func (h *Handler) OrderSummary(c *gin.Context) {
	counts, err := h.Checkout.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(counts))
}

// GetOrder is the back office view of any order. The request carries no
// identity, so ownership is not checked.
func (h *Handler) GetOrder(c *gin.Context) {
	view, err := h.Checkout.GetOrderStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(view))
}

func (h *Handler) OrderHistory(c *gin.Context) {
	entries, err := h.Checkout.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(entries))
}
