package checkout

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	"musicosbooking.pt/api/pkg/apperr"
	"musicosbooking.pt/api/pkg/models"
)

const MaxProofSize = 5 * 1024 * 1024

var allowedProofTypes = []string{"image/jpeg", "image/png", "application/pdf"}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ProofFile is an uploaded receipt. Size is the size the client declared; the
// content is measured as well.
type ProofFile struct {
	Name    string
	Size    int64
	Content io.Reader
}

// UploadProof stores a JPEG, PNG or PDF receipt for the order and links its URL
// to the order. The type is detected from the content, not from the client.
func (s *Service) UploadProof(ctx context.Context, orderID string, file *ProofFile) (string, error) {
	if file == nil || file.Content == nil {
		return "", ErrMissingFile
	}

	data, err := io.ReadAll(io.LimitReader(file.Content, MaxProofSize+1))
	if err != nil {
		return "", apperr.External("Erro ao ler o comprovativo", err)
	}
	if len(data) == 0 {
		return "", ErrMissingFile
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedProofTypes...) {
		return "", ErrUnsupportedType
	}
	if int64(len(data)) > MaxProofSize || file.Size > MaxProofSize {
		return "", ErrFileTooLarge
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return "", err
	}
	if err := authorize(ctx, order); err != nil {
		return "", err
	}
	if order.HasProof() {
		return "", ErrProofAlreadyUploaded
	}

	now := s.now().UTC()
	path := fmt.Sprintf("proofs/%s/%d_%s", orderID, now.UnixMilli(), safeFileName(file.Name, mtype.Extension()))
	ref, err := s.blobs.Put(ctx, path, mtype.String(), bytes.NewReader(data))
	if err != nil {
		return "", apperr.External("Erro ao fazer upload do comprovativo", err)
	}
	url := s.blobs.URL(ref)

	err = s.orders.Update(ctx, orderID,
		map[string]any{"proof_of_payment_url": nil},
		map[string]any{"proof_of_payment_url": url, "proof_uploaded_at": now, "updated_at": now},
	)
	if errors.Is(err, ErrOrderNotFound) {
		log.Warn().Str("order", orderID).Str("blob", ref).Msg("checkout: proof raced with another upload, blob left orphaned")
		return "", ErrProofAlreadyUploaded
	}
	if err != nil {
		return "", apperr.External("Erro ao fazer upload do comprovativo", err)
	}

	order.ProofOfPaymentURL = &url
	order.ProofUploadedAt = &now
	order.UpdatedAt = now

	log.Info().Str("order", orderID).Str("type", mtype.String()).Int("bytes", len(data)).Msg("checkout: proof uploaded")
	s.record(ctx, order, models.ActionProofUploaded, "")
	s.publish(ctx, models.EventOrderProofUploaded, order, "")
	return url, nil
}

// OpenProof streams a stored proof back to an admin or the order owner.
func (s *Service) OpenProof(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	rc, contentType, err := s.blobs.Open(ctx, ref)
	if errors.Is(err, ErrProofNotFound) {
		return nil, "", ErrProofNotFound
	}
	if err != nil {
		return nil, "", apperr.External("Erro ao obter comprovativo", err)
	}
	return rc, contentType, nil
}

func safeFileName(name, ext string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "_"), "._")
	if base == "" {
		return "comprovativo" + ext
	}
	return base
}
