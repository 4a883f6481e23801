package router

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"musicosbooking.pt/api/pkg/apperr"
	"musicosbooking.pt/api/pkg/checkout"
	"musicosbooking.pt/api/pkg/global"
	"musicosbooking.pt/api/pkg/models"
)

const cartUnavailableMessage = "Erro ao aceder ao carrinho"

func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.Carts.Get(c.Request.Context(), identity(c).UID)
	if err != nil {
		respondError(c, apperr.External(cartUnavailableMessage, err))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(cart.Snapshot()))
}

// AddToCart copies the listing's current price and title into the cart line.
func (h *Handler) AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	listing, err := h.Catalog.Listing(ctx, req.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !listing.IsAvailable() {
		respondError(c, checkout.ErrInvalidItem.WithMessage("Item indisponível: "+req.ID))
		return
	}

	cart, err := h.Carts.AddItem(ctx, identity(c).UID, models.CartItem{
		ID:       req.ID,
		Title:    listing.Title,
		Price:    listing.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(cart.Snapshot()))
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	cart, err := h.Carts.SetQuantity(c.Request.Context(), identity(c).UID, c.Param("id"), req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(cart.Snapshot()))
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	cart, err := h.Carts.RemoveItem(c.Request.Context(), identity(c).UID, c.Param("id"))
	if err != nil {
		respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(cart.Snapshot()))
}

func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.Carts.Clear(c.Request.Context(), identity(c).UID); err != nil {
		respondError(c, apperr.External(cartUnavailableMessage, err))
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse("Carrinho limpo"))
}

func respondCartError(c *gin.Context, err error) {
	if _, ok := apperr.As(err); ok {
		respondError(c, err)
		return
	}
	respondError(c, apperr.External(cartUnavailableMessage, err))
}

// CreateOrderRequest is the checkout form. Items may be sent inline; when
// they are omitted the stored cart is checked out.
type CreateOrderRequest struct {
	models.CustomerData
	Items []models.CartItem `json:"items"`
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	uid := identity(c).UID
	fromStore := len(req.Items) == 0

	var cart *models.Cart
	if fromStore {
		stored, err := h.Carts.Get(ctx, uid)
		if err != nil {
			respondError(c, apperr.External(cartUnavailableMessage, err))
			return
		}
		cart = stored
	} else {
		cart = models.NewCart()
		for _, item := range req.Items {
			if err := cart.AddItem(item); err != nil {
				respondError(c, err)
				return
			}
		}
	}

	receipt, err := h.Checkout.CreateOrder(ctx, cart, req.CustomerData)
	if err != nil {
		respondError(c, err)
		return
	}

	if fromStore {
		if err := h.Carts.Clear(ctx, uid); err != nil {
			log.Error().Err(err).Str("uid", uid).Str("order", receipt.OrderID).Msg("failed to clear cart after checkout")
		}
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(receipt))
}

func (h *Handler) GetUserOrders(c *gin.Context) {
	orders, err := h.Checkout.GetUserOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Total-Count", strconv.Itoa(len(orders)))
	c.JSON(http.StatusOK, global.SuccessResponse(orders))
}

func (h *Handler) GetOrderStatus(c *gin.Context) {
	view, err := h.Checkout.GetOrderStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(view))
}

// UploadProof accepts the receipt as multipart field "file".
func (h *Handler) UploadProof(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, checkout.MaxProofSize+1<<20)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, checkout.ErrFileTooLarge)
			return
		}
		respondError(c, checkout.ErrMissingFile)
		return
	}
	f, err := header.Open()
	if err != nil {
		respondError(c, apperr.External("Erro ao ler o comprovativo", err))
		return
	}
	defer f.Close()

	url, err := h.Checkout.UploadProof(c.Request.Context(), c.Param("id"), &checkout.ProofFile{
		Name:    header.Filename,
		Size:    header.Size,
		Content: f,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(map[string]string{"proof_of_payment_url": url}))
}

// DownloadProof streams a stored proof to the back office.
func (h *Handler) DownloadProof(c *gin.Context) {
	rc, contentType, err := h.Checkout.OpenProof(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "private, no-store")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		log.Error().Err(err).Str("request_id", requestID(c)).Str("proof", c.Param("ref")).Msg("proof download interrupted")
	}
}
