// Package checkout turns a cart into a pending order and drives the order
// through proof upload, payment confirmation and booking confirmation.
package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"musicosbooking.pt/api/pkg/apperr"
	"musicosbooking.pt/api/pkg/models"
	"musicosbooking.pt/api/pkg/payment"
	"musicosbooking.pt/api/pkg/validation"
)

// maxReferenceAttempts bounds regeneration after a unique index collision.
const maxReferenceAttempts = 3

const defaultPendingLimit = 100

type Settings struct {
	Bank          models.BankDetails
	PayPalAccount string
	OrderTTL      time.Duration
}

// Dependencies wires the collaborators of a Service. Orders and Blobs are
// required; the rest may be nil.
type Dependencies struct {
	Orders OrderStore
	Blobs  BlobStore
	Prices PriceBook
	Events EventPublisher
	Logs   OrderLogStore
	Refs   *payment.Generator
	Now    func() time.Time
}

type Service struct {
	orders   OrderStore
	blobs    BlobStore
	prices   PriceBook
	events   EventPublisher
	logs     OrderLogStore
	refs     *payment.Generator
	now      func() time.Time
	settings Settings
}

func NewService(deps Dependencies, settings Settings) *Service {
	if deps.Refs == nil {
		deps.Refs = payment.NewGenerator()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if settings.OrderTTL <= 0 {
		settings.OrderTTL = 7 * 24 * time.Hour
	}
	return &Service{
		orders:   deps.Orders,
		blobs:    deps.Blobs,
		prices:   deps.Prices,
		events:   deps.Events,
		logs:     deps.Logs,
		refs:     deps.Refs,
		now:      deps.Now,
		settings: settings,
	}
}

// CreateOrder validates the customer, snapshots the cart into a pending order
// and persists it. Nothing is stored when any step fails.
func (s *Service) CreateOrder(ctx context.Context, cart *models.Cart, customer models.CustomerData) (*models.OrderReceipt, error) {
	identity, ok := models.IdentityFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	customer, err := normalizeCustomer(customer)
	if err != nil {
		return nil, err
	}

	if cart == nil || cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	items, err := s.priceItems(ctx, cart.Lines())
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	fee := payment.Fee(total, customer.PaymentMethod)

	order := &models.Order{
		UID:           identity.UID,
		CustomerEmail: customer.Email,
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
		Items:         items,
		TotalAmount:   total,
		PaymentFee:    fee,
		AmountDue:     total.Add(fee),
		Status:        models.StatusPending,
		PaymentMethod: customer.PaymentMethod,
		MBWayPhone:    customer.MBWayPhone,
		BankDetails:   s.settings.Bank,
		Notes:         customer.Notes,
	}
	order.SetTimestamps(s.now().UTC(), s.settings.OrderTTL)

	orderID, err := s.insert(ctx, order)
	if err != nil {
		return nil, err
	}

	instructions, err := payment.RenderInstructions(payment.InstructionsInput{
		Reference:     order.PaymentReference,
		AmountDue:     order.AmountDue,
		Fee:           order.PaymentFee,
		Method:        order.PaymentMethod,
		Bank:          order.BankDetails,
		PayPalAccount: s.settings.PayPalAccount,
		MBWayPhone:    order.MBWayPhone,
		ValidityDays:  int(s.settings.OrderTTL / (24 * time.Hour)),
	})
	if err != nil {
		log.Error().Err(err).Str("order", orderID).Msg("checkout: render instructions failed")
	}

	log.Info().
		Str("order", orderID).
		Str("reference", order.PaymentReference).
		Str("total", total.StringFixed(2)).
		Msg("checkout: order created")

	s.record(ctx, order, models.ActionCreated, "")
	s.publish(ctx, models.EventOrderCreated, order, instructions)

	receipt := &models.OrderReceipt{
		OrderID:          orderID,
		PaymentReference: order.PaymentReference,
		TotalAmount:      order.TotalAmount,
		AmountDue:        order.AmountDue,
		Order:            order,
		Instructions:     instructions,
	}
	if order.PaymentMethod == models.MethodPayPal {
		receipt.PayPalLink = payment.PayPalLink(s.settings.PayPalAccount, order.AmountDue)
	}
	return receipt, nil
}

func normalizeCustomer(c models.CustomerData) (models.CustomerData, error) {
	c.Email = strings.TrimSpace(c.Email)
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Email == "" || c.Name == "" {
		return c, ErrMissingCustomerData
	}
	if res := validation.Email(c.Email); !res.Valid {
		return c, ErrInvalidCustomerData.WithField("email").WithMessage(res.Error)
	}
	if c.Phone != "" {
		if res := validation.Phone(c.Phone); !res.Valid {
			return c, ErrInvalidCustomerData.WithField("telefone").WithMessage(res.Error)
		}
	}

	if c.PaymentMethod == "" {
		c.PaymentMethod = models.MethodBankTransfer
	}
	if !c.PaymentMethod.Valid() {
		return c, ErrInvalidPaymentMethod.WithField("payment_method")
	}
	if c.PaymentMethod == models.MethodMBWay {
		if c.MBWayPhone == "" {
			c.MBWayPhone = c.Phone
		}
		if !validation.Phone(c.MBWayPhone).Valid {
			return c, ErrInvalidMBWayPhone
		}
		c.MBWayPhone = validation.NormalizePhone(c.MBWayPhone)
	} else {
		c.MBWayPhone = ""
	}

	c.Name = validation.Sanitize(c.Name)
	c.Notes = validation.Sanitize(c.Notes)
	return c, nil
}

// priceItems replaces client supplied unit prices with listing prices when a
// PriceBook is wired.
func (s *Service) priceItems(ctx context.Context, items []models.CartItem) ([]models.CartItem, error) {
	if s.prices == nil {
		return items, nil
	}
	for i := range items {
		listing, err := s.prices.Listing(ctx, items[i].ID)
		if errors.Is(err, ErrListingNotFound) {
			return nil, ErrInvalidItem.WithMessage("Item indisponível: " + items[i].ID)
		}
		if err != nil {
			return nil, apperr.External("Erro ao criar pedido", err)
		}
		if !listing.IsAvailable() {
			return nil, ErrInvalidItem.WithMessage("Item indisponível: " + items[i].ID)
		}
		items[i].Price = listing.Price
		items[i].Title = listing.Title
	}
	return items, nil
}

func (s *Service) insert(ctx context.Context, order *models.Order) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		order.PaymentReference = s.refs.Reference(order.PaymentMethod)
		id, err := s.orders.Create(ctx, order)
		if err == nil {
			return id, nil
		}
		lastErr = err
		if !errors.Is(err, ErrDuplicateReference) {
			break
		}
		log.Warn().Str("reference", order.PaymentReference).Msg("checkout: payment reference collision, regenerating")
	}
	return "", apperr.External("Erro ao criar pedido", lastErr)
}

// ConfirmPayment marks a pending order as paid. It is a trusted admin action:
// the bank receipt is not verified here.
func (s *Service) ConfirmPayment(ctx context.Context, orderID string) (*models.Order, error) {
	return s.advance(ctx, orderID, models.StatusPaid)
}

// ConfirmOrder confirms the booking of a paid order.
func (s *Service) ConfirmOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return s.advance(ctx, orderID, models.StatusConfirmed)
}

func (s *Service) advance(ctx context.Context, orderID string, next models.OrderStatus) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	now := s.now().UTC()
	if !order.UpdateStatus(next, now) {
		return nil, ErrInvalidTransition
	}

	fields := map[string]any{"status": next, "updated_at": now}
	action, event := models.ActionPaid, models.EventOrderPaid
	if next == models.StatusPaid {
		fields["paid_at"] = now
	} else {
		fields["confirmed_at"] = now
		action, event = models.ActionConfirmed, models.EventOrderConfirmed
	}

	err = s.orders.Update(ctx, orderID, map[string]any{"status": from}, fields)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, apperr.External("Erro ao atualizar pedido", err)
	}

	log.Info().Str("order", orderID).Str("from", string(from)).Str("to", string(next)).Msg("checkout: status changed")
	s.record(ctx, order, action, from)
	s.publish(ctx, event, order, "")
	return order, nil
}

// GetOrderStatus returns the order with its advisory expiry flag. Callers with
// an identity may only read their own orders.
func (s *Service) GetOrderStatus(ctx context.Context, orderID string) (*models.OrderStatusView, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, order); err != nil {
		return nil, err
	}
	return &models.OrderStatusView{Order: order, Expired: order.IsExpired(s.now())}, nil
}

// GetUserOrders lists the caller's orders, newest first.
func (s *Service) GetUserOrders(ctx context.Context) ([]models.Order, error) {
	identity, ok := models.IdentityFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}
	orders, err := s.orders.ListByUser(ctx, identity.UID)
	if err != nil {
		return nil, apperr.External("Erro ao buscar pedidos", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// ListPending feeds the admin reconciliation view.
func (s *Service) ListPending(ctx context.Context, limit int64) ([]models.Order, error) {
	if limit <= 0 {
		limit = defaultPendingLimit
	}
	orders, err := s.orders.ListByStatus(ctx, models.StatusPending, limit)
	if err != nil {
		return nil, apperr.External("Erro ao buscar pedidos", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (s *Service) Summary(ctx context.Context) ([]models.StatusCount, error) {
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, apperr.External("Erro ao calcular resumo de pedidos", err)
	}
	return counts, nil
}

func (s *Service) History(ctx context.Context, orderID string) ([]models.OrderLog, error) {
	if _, err := s.load(ctx, orderID); err != nil {
		return nil, err
	}
	if s.logs == nil {
		return []models.OrderLog{}, nil
	}
	entries, err := s.logs.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, apperr.External("Erro ao buscar histórico do pedido", err)
	}
	return entries, nil
}

func (s *Service) load(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, apperr.External("Erro ao buscar pedido", err)
	}
	return order, nil
}

func authorize(ctx context.Context, order *models.Order) error {
	if identity, ok := models.IdentityFromContext(ctx); ok && identity.UID != order.UID {
		return ErrForbidden
	}
	return nil
}

// record and publish are best effort: the order is already stored.
func (s *Service) record(ctx context.Context, order *models.Order, action models.OrderAction, from models.OrderStatus) {
	if s.logs == nil {
		return
	}
	performedBy := models.ActorSystem
	if identity, ok := models.IdentityFromContext(ctx); ok {
		performedBy = identity.UID
	}
	entry := &models.OrderLog{
		OrderID:      order.ID.Hex(),
		Action:       action,
		StatusBefore: from,
		StatusAfter:  order.Status,
		PerformedBy:  performedBy,
	}
	entry.SetTimestamp(s.now().UTC())
	if err := s.logs.Append(ctx, entry); err != nil {
		log.Error().Err(err).Str("order", entry.OrderID).Str("action", string(action)).Msg("checkout: order log append failed")
	}
}

func (s *Service) publish(ctx context.Context, t models.EventType, order *models.Order, instructions string) {
	if s.events == nil {
		return
	}
	ev := models.NewOrderEvent(t, order, s.now().UTC())
	ev.Instructions = instructions
	if err := s.events.Publish(ctx, ev); err != nil {
		log.Error().Err(err).Str("order", ev.OrderID).Str("event", string(t)).Msg("checkout: publish failed")
	}
}
