package checkout

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"musicosbooking.pt/api/pkg/models"
)

// MockOrderStore keeps orders in memory and honours update guards
type MockOrderStore struct {
	mu            sync.Mutex
	orders        map[string]*models.Order
	DuplicateRefs int   // number of Create calls that fail with ErrDuplicateReference
	CreateErr     error // returned by Create after the duplicates are spent
	GetErr        error
	UpdateErr     error
	CreateCalls   int
}

func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{orders: map[string]*models.Order{}}
}

func (m *MockOrderStore) Create(_ context.Context, order *models.Order) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.DuplicateRefs > 0 {
		m.DuplicateRefs--
		return "", ErrDuplicateReference
	}
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	order.ID = bson.NewObjectID()
	m.orders[order.ID.Hex()] = cloneOrder(order)
	return order.ID.Hex(), nil
}

func (m *MockOrderStore) Get(_ context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (m *MockOrderStore) Update(_ context.Context, id string, guard, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	o, ok := m.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	for k, want := range guard {
		switch k {
		case "status":
			if o.Status != want.(models.OrderStatus) {
				return ErrOrderNotFound
			}
		case "proof_of_payment_url":
			if o.ProofOfPaymentURL != nil {
				return ErrOrderNotFound
			}
		default:
			return fmt.Errorf("mock: unsupported guard %q", k)
		}
	}
	for k, v := range fields {
		switch k {
		case "status":
			o.Status = v.(models.OrderStatus)
		case "paid_at":
			t := v.(time.Time)
			o.PaidAt = &t
		case "confirmed_at":
			t := v.(time.Time)
			o.ConfirmedAt = &t
		case "proof_of_payment_url":
			u := v.(string)
			o.ProofOfPaymentURL = &u
		case "proof_uploaded_at":
			t := v.(time.Time)
			o.ProofUploadedAt = &t
		case "updated_at":
			o.UpdatedAt = v.(time.Time)
		default:
			return fmt.Errorf("mock: unsupported field %q", k)
		}
	}
	return nil
}

func (m *MockOrderStore) ListByUser(_ context.Context, uid string) ([]models.Order, error) {
	return m.filter(func(o *models.Order) bool { return o.UID == uid }, 0), nil
}

func (m *MockOrderStore) ListByStatus(_ context.Context, status models.OrderStatus, limit int64) ([]models.Order, error) {
	return m.filter(func(o *models.Order) bool { return o.Status == status }, limit), nil
}

func (m *MockOrderStore) CountByStatus(_ context.Context) ([]models.StatusCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buckets := map[models.OrderStatus]*models.StatusCount{}
	for _, o := range m.orders {
		b, ok := buckets[o.Status]
		if !ok {
			b = &models.StatusCount{Status: o.Status}
			buckets[o.Status] = b
		}
		b.Count++
		b.TotalAmount = b.TotalAmount.Add(o.TotalAmount)
	}
	var out []models.StatusCount
	for _, b := range buckets {
		out = append(out, *b)
	}
	return out, nil
}

func (m *MockOrderStore) filter(keep func(*models.Order) bool, limit int64) []models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, *cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}

func (m *MockOrderStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func cloneOrder(o *models.Order) *models.Order {
	c := *o
	c.Items = append([]models.CartItem(nil), o.Items...)
	return &c
}

// MockBlobStore implements BlobStore in memory
type MockBlobStore struct {
	Blobs  map[string][]byte
	Paths  map[string]string
	Types  map[string]string
	PutErr error
}

func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{Blobs: map[string][]byte{}, Paths: map[string]string{}, Types: map[string]string{}}
}

func (m *MockBlobStore) Put(_ context.Context, path, contentType string, r io.Reader) (string, error) {
	if m.PutErr != nil {
		return "", m.PutErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	ref := fmt.Sprintf("blob-%d", len(m.Blobs)+1)
	m.Blobs[ref] = data
	m.Paths[ref] = path
	m.Types[ref] = contentType
	return ref, nil
}

func (m *MockBlobStore) URL(ref string) string {
	return "https://api.musicosbooking.test/api/proofs/" + ref
}

func (m *MockBlobStore) Open(_ context.Context, ref string) (io.ReadCloser, string, error) {
	data, ok := m.Blobs[ref]
	if !ok {
		return nil, "", ErrProofNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), m.Types[ref], nil
}

// MockPriceBook serves fixed listings
type MockPriceBook struct {
	Listings map[string]*models.Listing
	Err      error
}

func (m *MockPriceBook) Listing(_ context.Context, id string) (*models.Listing, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	l, ok := m.Listings[id]
	if !ok {
		return nil, ErrListingNotFound
	}
	return l, nil
}

// MockPublisher captures published events
type MockPublisher struct {
	Events []models.OrderEvent
	Err    error
}

func (m *MockPublisher) Publish(_ context.Context, ev models.OrderEvent) error {
	m.Events = append(m.Events, ev)
	return m.Err
}

func (m *MockPublisher) Types() []models.EventType {
	var out []models.EventType
	for _, ev := range m.Events {
		out = append(out, ev.Type)
	}
	return out
}

// MockOrderLog captures audit entries
type MockOrderLog struct {
	Entries []models.OrderLog
}

func (m *MockOrderLog) Append(_ context.Context, entry *models.OrderLog) error {
	m.Entries = append(m.Entries, *entry)
	return nil
}

func (m *MockOrderLog) ListByOrder(_ context.Context, orderID string) ([]models.OrderLog, error) {
	var out []models.OrderLog
	for _, e := range m.Entries {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}
