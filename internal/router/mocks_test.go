package router

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"musicosbooking.pt/api/pkg/accounts"
	"musicosbooking.pt/api/pkg/checkout"
	"musicosbooking.pt/api/pkg/mail"
	"musicosbooking.pt/api/pkg/models"
)

// orderStore keeps orders in memory and honours update guards
type orderStore struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func newOrderStore() *orderStore {
	return &orderStore{orders: map[string]*models.Order{}}
}

func (s *orderStore) Create(_ context.Context, order *models.Order) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order.ID = bson.NewObjectID()
	c := *order
	s.orders[order.ID.Hex()] = &c
	return order.ID.Hex(), nil
}

func (s *orderStore) Get(_ context.Context, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, checkout.ErrOrderNotFound
	}
	c := *o
	return &c, nil
}

func (s *orderStore) Update(_ context.Context, id string, guard, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return checkout.ErrOrderNotFound
	}
	if want, ok := guard["status"]; ok && o.Status != want.(models.OrderStatus) {
		return checkout.ErrOrderNotFound
	}
	if _, ok := guard["proof_of_payment_url"]; ok && o.ProofOfPaymentURL != nil {
		return checkout.ErrOrderNotFound
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
			return fmt.Errorf("orderStore: unsupported field %q", k)
		}
	}
	return nil
}

func (s *orderStore) ListByUser(_ context.Context, uid string) ([]models.Order, error) {
	return s.filter(func(o *models.Order) bool { return o.UID == uid }, 0), nil
}

func (s *orderStore) ListByStatus(_ context.Context, status models.OrderStatus, limit int64) ([]models.Order, error) {
	return s.filter(func(o *models.Order) bool { return o.Status == status }, limit), nil
}

func (s *orderStore) CountByStatus(_ context.Context) ([]models.StatusCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buckets := map[models.OrderStatus]*models.StatusCount{}
	for _, o := range s.orders {
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

func (s *orderStore) filter(keep func(*models.Order) bool, limit int64) []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}

func (s *orderStore) only() *models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		c := *o
		return &c
	}
	return nil
}

type blobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	types map[string]string
}

func newBlobStore() *blobStore {
	return &blobStore{blobs: map[string][]byte{}, types: map[string]string{}}
}

func (b *blobStore) Put(_ context.Context, _ string, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	ref := bson.NewObjectID().Hex()
	b.blobs[ref] = data
	b.types[ref] = contentType
	return ref, nil
}

func (b *blobStore) URL(ref string) string {
	return "http://localhost:8000/api/proofs/" + ref
}

func (b *blobStore) Open(_ context.Context, ref string) (io.ReadCloser, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.blobs[ref]
	if !ok {
		return nil, "", checkout.ErrProofNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), b.types[ref], nil
}

// listingStore backs both ListingStore and the cache loader
type listingStore struct {
	mu       sync.Mutex
	listings map[string]*models.Listing
	loads    int
}

func newListingStore() *listingStore {
	return &listingStore{listings: map[string]*models.Listing{}}
}

func (s *listingStore) Create(_ context.Context, listing *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if listing.ID.IsZero() {
		listing.ID = bson.NewObjectID()
	}
	c := *listing
	s.listings[listing.ID.Hex()] = &c
	return nil
}

func (s *listingStore) Listing(_ context.Context, id string) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	l, ok := s.listings[id]
	if !ok {
		return nil, checkout.ErrListingNotFound
	}
	c := *l
	return &c, nil
}

func (s *listingStore) ListActive(_ context.Context, limit int64) ([]models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Listing
	for _, l := range s.listings {
		if l.Status == models.ListingActive {
			out = append(out, *l)
		}
	}
	slices.SortFunc(out, func(a, b models.Listing) int { return a.Price.Cmp(b.Price) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *listingStore) SetStatus(_ context.Context, id, musicianUID, status string, _ map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok || l.MusicianUID != musicianUID {
		return checkout.ErrListingNotFound
	}
	l.Status = status
	return nil
}

type userStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newUserStore() *userStore {
	return &userStore{users: map[string]*models.User{}}
}

func (s *userStore) Create(_ context.Context, user *models.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return "", accounts.ErrEmailTaken
		}
	}
	user.ID = bson.NewObjectID()
	c := *user
	s.users[user.UID()] = &c
	return user.UID(), nil
}

func (s *userStore) ByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, accounts.ErrUserNotFound
}

func (s *userStore) ByID(_ context.Context, uid string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[uid]
	if !ok {
		return nil, accounts.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (s *userStore) RecordLogin(_ context.Context, uid string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[uid]; ok {
		u.LoginCount++
		u.LastLogin = &at
	}
	return nil
}

func (s *userStore) UpdateProfile(_ context.Context, uid string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[uid]
	if !ok {
		return accounts.ErrUserNotFound
	}
	if v, ok := fields["nome"].(string); ok {
		u.Name = v
	}
	if v, ok := fields["telefone"].(string); ok {
		u.Phone = v
	}
	if v, ok := fields["updated_at"].(time.Time); ok {
		u.UpdatedAt = v
	}
	return nil
}

type captureSender struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (s *captureSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}
