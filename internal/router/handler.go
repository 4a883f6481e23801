package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"musicosbooking.pt/api/pkg/accounts"
	"musicosbooking.pt/api/pkg/checkout"
	"musicosbooking.pt/api/pkg/global"
	"musicosbooking.pt/api/pkg/models"
	"musicosbooking.pt/api/pkg/quotes"
	"musicosbooking.pt/api/pkg/security"
)

// CartStore keeps the signed-in user's cart between requests.
type CartStore interface {
	Get(ctx context.Context, uid string) (*models.Cart, error)
	AddItem(ctx context.Context, uid string, item models.CartItem) (*models.Cart, error)
	SetQuantity(ctx context.Context, uid, id string, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, uid, id string) (*models.Cart, error)
	Clear(ctx context.Context, uid string) error
}

type ListingStore interface {
	Create(ctx context.Context, listing *models.Listing) error
	ListActive(ctx context.Context, limit int64) ([]models.Listing, error)
	SetStatus(ctx context.Context, id, musicianUID, status string, fields map[string]any) error
}

// Catalog is the cached read path for listings.
type Catalog interface {
	Listing(ctx context.Context, id string) (*models.Listing, error)
	Invalidate(ctx context.Context, id string) error
}

// HealthCheck reports one dependency.
type HealthCheck func(ctx context.Context) error

// Handler holds everything the HTTP routes call into.
type Handler struct {
	Checkout *checkout.Service
	Accounts *accounts.Service
	Quotes   *quotes.Service
	Carts    CartStore
	Listings ListingStore
	Catalog  Catalog
	CSRF     *security.CSRF
	// QuoteLimiter throttles the public quote form per client IP.
	QuoteLimiter *security.Limiter
	Health       map[string]HealthCheck
	AdminAPIKey  string
}

func (h *Handler) HealthCheck(c *gin.Context) {
	status := map[string]string{"status": "OK"}
	healthy := true
	for name, check := range h.Health {
		if err := check(c.Request.Context()); err != nil {
			log.Error().Err(err).Str("dependency", name).Msg("health check failed")
			status[name] = "Disconnected"
			healthy = false
			continue
		}
		status[name] = "Connected"
	}
	if !healthy {
		status["status"] = "DEGRADED"
		c.JSON(http.StatusServiceUnavailable, global.APIResponse{Success: false, Data: status, Message: "Dependency unavailable"})
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(status))
}

func (h *Handler) IssueCSRFToken(c *gin.Context) {
	token, err := h.CSRF.Issue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(token))
}

func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := h.Accounts.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(user))
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	res, err := h.Accounts.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(res))
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.Accounts.Logout(c.Request.Context(), c.GetString(tokenKey)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse("Sessão terminada"))
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	msg, err := h.Accounts.ResetPassword(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse(msg))
}

func (h *Handler) GetStatus(c *gin.Context) {
	user, err := h.Accounts.GetStatus(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(user))
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := h.Accounts.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(user))
}

// SubmitQuote handles the public "pedir orçamento" form.
func (h *Handler) SubmitQuote(c *gin.Context) {
	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.Quotes.Submit(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse(quotes.SuccessMessage))
}
