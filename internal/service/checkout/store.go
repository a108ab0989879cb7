package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"

	"fluxo-storefront/internal/domain"
	"fluxo-storefront/internal/repository/draft"
)

const keyPrefix = "fluxo-checkout-state:"

// StorageKey is the persistence key of a session's draft.
func StorageKey(sessionID string) string {
	return keyPrefix + sessionID
}

// Store encodes drafts as JSON over a draft.Repository. Storage failures are
// logged and otherwise ignored.
type Store struct {
	repo   draft.Repository
	logger *log.Logger
}

// NewStore wraps repo. A nil logger discards storage errors.
func NewStore(repo draft.Repository, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{repo: repo, logger: logger}
}

// Load returns the persisted draft merged over the defaults. With nothing
// persisted the defaults are seeded from profile. A payload that does not
// decode is deleted and the defaults are returned.
func (s *Store) Load(ctx context.Context, sessionID string, profile *domain.Profile) domain.CheckoutDraft {
	key := StorageKey(sessionID)
	payload, err := s.repo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Printf("checkout store: load key=%s error=%v", key, err)
		}
		return domain.NewCheckoutDraft(profile)
	}

	d, err := decodeDraft(payload)
	if err != nil {
		s.logger.Printf("checkout store: discarding corrupt draft key=%s error=%v", key, err)
		s.Delete(ctx, sessionID)
		return domain.NewCheckoutDraft(profile)
	}
	return d
}

// Save writes the full draft.
func (s *Store) Save(ctx context.Context, sessionID string, d domain.CheckoutDraft) {
	key := StorageKey(sessionID)
	payload, err := json.Marshal(d)
	if err != nil {
		s.logger.Printf("checkout store: encode key=%s error=%v", key, err)
		return
	}
	if err := s.repo.Put(ctx, key, payload); err != nil {
		s.logger.Printf("checkout store: save key=%s error=%v", key, err)
	}
}

// Delete removes the session's draft.
func (s *Store) Delete(ctx context.Context, sessionID string) {
	key := StorageKey(sessionID)
	if err := s.repo.Delete(ctx, key); err != nil {
		s.logger.Printf("checkout store: delete key=%s error=%v", key, err)
	}
}

// decodeDraft unmarshals onto the defaults, so absent or null fields keep
// their default value. Out-of-range enums fall back to defaults too.
func decodeDraft(payload []byte) (domain.CheckoutDraft, error) {
	d := domain.NewCheckoutDraft(nil)
	if err := json.Unmarshal(payload, &d); err != nil {
		return domain.CheckoutDraft{}, err
	}
	def := domain.NewCheckoutDraft(nil)
	if d.Step < domain.StepBuyer || d.Step > domain.StepReview {
		d.Step = def.Step
	}
	if !d.PaymentMethod.Valid() {
		d.PaymentMethod = def.PaymentMethod
	}
	if !d.Status.Valid() {
		d.Status = def.Status
	}
	if d.CardInfo.Installments == "" {
		d.CardInfo.Installments = def.CardInfo.Installments
	}
	return d, nil
}
