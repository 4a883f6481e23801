package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"musicosbooking.pt/api/pkg/apperr"
	"musicosbooking.pt/api/pkg/global"
	"musicosbooking.pt/api/pkg/models"
	"musicosbooking.pt/api/pkg/validation"
)

const listingsPageSize = 100

var errInvalidPrice = apperr.Validation("invalid_price", "Preço deve ser positivo").WithField("price")

func (h *Handler) ListListings(c *gin.Context) {
	listings, err := h.Listings.ListActive(c.Request.Context(), listingsPageSize)
	if err != nil {
		respondError(c, apperr.External("Erro ao buscar anúncios", err))
		return
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	c.JSON(http.StatusOK, global.SuccessResponse(listings))
}

func (h *Handler) GetListing(c *gin.Context) {
	listing, err := h.Catalog.Listing(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(listing))
}

func (h *Handler) CreateListing(c *gin.Context) {
	var req models.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if !req.Price.IsPositive() {
		respondError(c, errInvalidPrice)
		return
	}
	req.Title = validation.Sanitize(strings.TrimSpace(req.Title))
	req.Description = validation.Sanitize(strings.TrimSpace(req.Description))
	req.Genre = validation.Sanitize(strings.TrimSpace(req.Genre))

	listing := req.ToListing(identity(c).UID, time.Now().UTC())
	if err := h.Listings.Create(c.Request.Context(), listing); err != nil {
		respondError(c, apperr.External("Erro ao criar anúncio", err))
		return
	}
	log.Info().Str("listing", listing.ID.Hex()).Str("musician", listing.MusicianUID).Msg("listing published")
	c.JSON(http.StatusCreated, global.SuccessResponse(listing))
}

// DeactivateListing hides a listing. Only its musician may do so; other
// callers get a not found.
func (h *Handler) DeactivateListing(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	err := h.Listings.SetStatus(ctx, id, identity(c).UID, models.ListingInactive, map[string]any{"updated_at": time.Now().UTC()})
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	if err := h.Catalog.Invalidate(ctx, id); err != nil {
		log.Warn().Err(err).Str("listing", id).Msg("listing cache invalidation failed")
	}
	c.JSON(http.StatusOK, global.MessageResponse("Anúncio desativado"))
}

func respondCatalogError(c *gin.Context, err error) {
	if _, ok := apperr.As(err); ok {
		respondError(c, err)
		return
	}
	respondError(c, apperr.External("Erro ao buscar anúncio", err))
}
