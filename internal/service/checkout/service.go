// Package checkout runs the three-step checkout wizard: buyer data, payment
// method, review and a simulated payment.
package checkout

import (
	"context"
	"io"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"fluxo-storefront/internal/domain"
	"fluxo-storefront/internal/events"
	"fluxo-storefront/internal/format"
	"fluxo-storefront/internal/validate"
	"github.com/google/uuid"
)

const (
	titleInvalidData = "Dados incompletos"
	publishTimeout   = 5 * time.Second

	// processingMargin is added to the simulator delay to get the time after
	// which a persisted processing status is considered abandoned.
	processingMargin = 30 * time.Second
)

type cartService interface {
	Items(ctx context.Context, sessionID string) ([]domain.CartItem, error)
	Clear(ctx context.Context, sessionID string) error
}

type notifier interface {
	Notify(sessionID, title, message string, severity domain.Severity) domain.Notification
}

type publisher interface {
	Publish(ctx context.Context, event events.PaymentEvent) error
}

type simulator interface {
	Simulate(ctx context.Context, method domain.PaymentMethod) (Outcome, error)
}

// Session identifies whose checkout an operation acts on. Profile seeds new
// drafts and may be nil.
type Session struct {
	ID      string
	Profile *domain.Profile
}

// View is the draft plus everything derived from it for rendering.
type View struct {
	domain.CheckoutDraft
	Reason        string  `json:"reason,omitempty"`
	StatusMessage string  `json:"statusMessage,omitempty"`
	PaymentNote   string  `json:"paymentNote,omitempty"`
	OrderID       string  `json:"orderId,omitempty"`
	Summary       Summary `json:"summary"`
}

// BuyerPatch carries the buyer fields to overwrite; nil fields are left alone.
type BuyerPatch struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	PostalCode *string `json:"postalCode"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	State      *string `json:"state"`
}

// CardPatch carries the card fields to overwrite; nil fields are left alone.
type CardPatch struct {
	Number       *string `json:"number"`
	Holder       *string `json:"holder"`
	Expiry       *string `json:"expiry"`
	CVV          *string `json:"cvv"`
	Installments *string `json:"installments"`
}

// Service drives the checkout wizard of every session. Operations on one
// session are serialized.
type Service struct {
	store  *Store
	cart   cartService
	sim    simulator
	notes  notifier
	events publisher
	logger *log.Logger

	locks      *sessionLocks
	mu         sync.Mutex
	processing map[string]bool
	lease      time.Duration
	now        func() time.Time
	newOrderID func() string
}

// New builds a Service. A nil publisher drops payment events.
func New(store *Store, cart cartService, sim simulator, notes notifier, pub publisher, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if pub == nil {
		pub = events.NopPublisher{}
	}
	lease := DefaultPaymentDelay + processingMargin
	if d, ok := sim.(interface{ Delay() time.Duration }); ok {
		lease = d.Delay() + processingMargin
	}
	return &Service{
		store:      store,
		cart:       cart,
		sim:        sim,
		notes:      notes,
		events:     pub,
		logger:     logger,
		locks:      newSessionLocks(),
		processing: make(map[string]bool),
		lease:      lease,
		now:        time.Now,
		newOrderID: uuid.NewString,
	}
}

// Get returns the session's draft with its order summary.
func (s *Service) Get(ctx context.Context, sess Session) (*View, error) {
	unlock := s.locks.lock(sess.ID)
	defer unlock()
	return s.view(ctx, sess, s.load(ctx, sess))
}

// UpdateBuyer overwrites the given buyer fields, masking postal code and phone.
func (s *Service) UpdateBuyer(ctx context.Context, sess Session, patch BuyerPatch) (*View, error) {
	return s.mutate(ctx, sess, func(d *domain.CheckoutDraft) {
		b := &d.BuyerInfo
		set(&b.Name, patch.Name, nil)
		set(&b.Email, patch.Email, nil)
		set(&b.PostalCode, patch.PostalCode, format.PostalCode)
		set(&b.Phone, patch.Phone, format.Phone)
		set(&b.Address, patch.Address, nil)
		set(&b.City, patch.City, nil)
		set(&b.State, patch.State, strings.ToUpper)
	})
}

// UpdateCard overwrites the given card fields, masking number, expiry and CVV.
// Installments outside 1..12 are stored as 1.
func (s *Service) UpdateCard(ctx context.Context, sess Session, patch CardPatch) (*View, error) {
	return s.mutate(ctx, sess, func(d *domain.CheckoutDraft) {
		c := &d.CardInfo
		set(&c.Number, patch.Number, format.CardNumber)
		set(&c.Holder, patch.Holder, nil)
		set(&c.Expiry, patch.Expiry, format.Expiry)
		set(&c.CVV, patch.CVV, format.CVV)
		set(&c.Installments, patch.Installments, normalizeInstallments)
	})
}

// SelectMethod switches the payment method. Card data is kept.
func (s *Service) SelectMethod(ctx context.Context, sess Session, method domain.PaymentMethod) (*View, error) {
	if !method.Valid() {
		return nil, ErrInvalidMethod
	}
	return s.mutate(ctx, sess, func(d *domain.CheckoutDraft) {
		d.PaymentMethod = method
	})
}

// Back returns to the previous step; it is a no-op on step 1.
func (s *Service) Back(ctx context.Context, sess Session) (*View, error) {
	return s.mutate(ctx, sess, func(d *domain.CheckoutDraft) {
		if d.Step > domain.StepBuyer {
			d.Step--
		}
	})
}

// Retry resets a failed or expired payment to idle, back on the card step
// for credit cards and on the review step otherwise.
func (s *Service) Retry(ctx context.Context, sess Session) (*View, error) {
	return s.recoverPayment(ctx, sess, func(d *domain.CheckoutDraft) {
		if d.PaymentMethod == domain.PaymentCreditCard {
			d.Step = domain.StepPayment
		} else {
			d.Step = domain.StepReview
		}
	})
}

// ChooseAnotherMethod resets a failed or expired payment to idle on the payment step.
func (s *Service) ChooseAnotherMethod(ctx context.Context, sess Session) (*View, error) {
	return s.recoverPayment(ctx, sess, func(d *domain.CheckoutDraft) {
		d.Step = domain.StepPayment
	})
}

// Advance submits the current step. It does nothing unless the draft is idle.
// A failed gate returns the updated view together with a *validate.FieldError.
// On the review step it persists status processing, waits for the simulated
// payment without holding the session and applies the outcome.
func (s *Service) Advance(ctx context.Context, sess Session) (*View, error) {
	unlock := s.locks.lock(sess.ID)
	d, start, view, err := s.submit(ctx, sess)
	unlock()
	if !start {
		return view, err
	}

	outcome, simErr := s.sim.Simulate(context.WithoutCancel(ctx), d.PaymentMethod)

	unlock = s.locks.lock(sess.ID)
	defer unlock()
	s.mu.Lock()
	delete(s.processing, sess.ID)
	s.mu.Unlock()

	if simErr != nil {
		s.logger.Printf("checkout: session=%s simulation aborted: %v", sess.ID, simErr)
		d.Status = domain.StatusIdle
		d.ProcessingSince = nil
		s.store.Save(ctx, sess.ID, d)
		view, err := s.view(ctx, sess, d)
		if err != nil {
			return nil, err
		}
		return view, simErr
	}
	return s.resolve(ctx, sess, d, outcome)
}

func (s *Service) submit(ctx context.Context, sess Session) (domain.CheckoutDraft, bool, *View, error) {
	d := s.load(ctx, sess)
	if d.Status != domain.StatusIdle {
		view, err := s.view(ctx, sess, d)
		if err != nil {
			return d, false, nil, err
		}
		return d, false, view, ErrNotIdle
	}

	items, err := s.cart.Items(ctx, sess.ID)
	if err != nil {
		return d, false, nil, err
	}
	if len(items) == 0 {
		return d, false, nil, ErrEmptyCart
	}

	var failed *validate.FieldError
	switch d.Step {
	case domain.StepBuyer:
		if failed = validate.Buyer(d.BuyerInfo); failed == nil {
			d.Step = domain.StepPayment
			s.store.Save(ctx, sess.ID, d)
			s.notes.Notify(sess.ID, "Dados confirmados", "Revise e selecione seu método de pagamento.", domain.SeverityInfo)
		}
	default:
		var owner int
		if failed, owner = checkGates(d); failed != nil {
			if d.Step != owner {
				d.Step = owner
				s.store.Save(ctx, sess.ID, d)
				s.notes.Notify(sess.ID, "Revise seus dados", fmt.Sprintf("Voltamos para a etapa %d para corrigir um campo.", owner), domain.SeverityInfo)
			}
			break
		}
		if d.Step == domain.StepPayment {
			d.Step = domain.StepReview
			s.store.Save(ctx, sess.ID, d)
			s.notes.Notify(sess.ID, "Forma de pagamento pronta", "Revise o pedido antes de confirmar.", domain.SeverityInfo)
			break
		}
		since := s.now().UTC()
		d.Status = domain.StatusProcessing
		d.ProcessingSince = &since
		s.store.Save(ctx, sess.ID, d)
		s.mu.Lock()
		s.processing[sess.ID] = true
		s.mu.Unlock()
		s.logger.Printf("checkout: session=%s payment started method=%s", sess.ID, d.PaymentMethod)
		return d, true, nil, nil
	}

	if failed != nil {
		s.notes.Notify(sess.ID, titleInvalidData, failed.Message, domain.SeverityError)
	}
	view := s.viewWithItems(d, items)
	if failed != nil {
		return d, false, view, failed
	}
	return d, false, view, nil
}

// checkGates runs each gate once and reports the first failure together
// with the step that owns the failing field.
func checkGates(d domain.CheckoutDraft) (*validate.FieldError, int) {
	if fe := validate.Buyer(d.BuyerInfo); fe != nil {
		return fe, domain.StepBuyer
	}
	if fe := validate.Card(d.PaymentMethod, d.CardInfo); fe != nil {
		return fe, domain.StepPayment
	}
	return nil, d.Step
}

func (s *Service) resolve(ctx context.Context, sess Session, d domain.CheckoutDraft, outcome Outcome) (*View, error) {
	items, err := s.cart.Items(ctx, sess.ID)
	if err != nil {
		s.logger.Printf("checkout: session=%s read cart after payment: %v", sess.ID, err)
	}
	d.Status = outcome.Status
	d.ProcessingSince = nil
	event := events.PaymentEvent{
		OrderID:    s.newOrderID(),
		SessionID:  sess.ID,
		Email:      d.BuyerInfo.Email,
		Method:     d.PaymentMethod,
		Status:     outcome.Status,
		Reason:     outcome.Reason,
		Total:      Summarize(items, d).Total,
		Items:      len(items),
		OccurredAt: time.Now().UTC(),
	}

	view := s.viewWithItems(d, items)
	switch outcome.Status {
	case domain.StatusPaid:
		s.store.Delete(ctx, sess.ID)
		if err := s.cart.Clear(ctx, sess.ID); err != nil {
			s.logger.Printf("checkout: session=%s clear cart: %v", sess.ID, err)
		}
		s.notes.Notify(sess.ID, "Pagamento aprovado", "Seu pedido foi confirmado com sucesso.", domain.SeveritySuccess)
		view.OrderID = event.OrderID
	case domain.StatusFailed:
		s.store.Save(ctx, sess.ID, d)
		s.notes.Notify(sess.ID, "Pagamento não autorizado", "Verifique os dados do pagamento e tente novamente.", domain.SeverityError)
	default:
		s.store.Save(ctx, sess.ID, d)
		s.notes.Notify(sess.ID, expiredTitle(d.PaymentMethod), "Gere um novo pagamento para concluir seu pedido.", domain.SeverityError)
	}
	s.logger.Printf("checkout: session=%s payment %s method=%s", sess.ID, outcome.Status, d.PaymentMethod)

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.Publish(pubCtx, event); err != nil {
		s.logger.Printf("checkout: session=%s publish payment event: %v", sess.ID, err)
	}
	return view, nil
}

func expiredTitle(method domain.PaymentMethod) string {
	switch method {
	case domain.PaymentPix:
		return "Pix expirado"
	case domain.PaymentBoleto:
		return "Boleto expirado"
	}
	return "Pagamento expirado"
}

func (s *Service) recoverPayment(ctx context.Context, sess Session, reset func(d *domain.CheckoutDraft)) (*View, error) {
	unlock := s.locks.lock(sess.ID)
	defer unlock()

	d := s.load(ctx, sess)
	if !d.Status.IsRecoverable() {
		return nil, ErrNotTerminal
	}
	d.Status = domain.StatusIdle
	reset(&d)
	s.store.Save(ctx, sess.ID, d)
	return s.view(ctx, sess, d)
}

// mutate applies fn to an idle draft and persists the result.
func (s *Service) mutate(ctx context.Context, sess Session, fn func(d *domain.CheckoutDraft)) (*View, error) {
	unlock := s.locks.lock(sess.ID)
	defer unlock()

	d := s.load(ctx, sess)
	if d.Status != domain.StatusIdle {
		return nil, ErrNotIdle
	}
	fn(&d)
	s.store.Save(ctx, sess.ID, d)
	return s.view(ctx, sess, d)
}

// load reads the draft. A persisted processing status is reset to idle only
// when no simulation runs for it in this process and its start is older than
// the lease, so a payment started by another instance sharing the store is
// left alone.
func (s *Service) load(ctx context.Context, sess Session) domain.CheckoutDraft {
	d := s.store.Load(ctx, sess.ID, sess.Profile)
	if d.Status != domain.StatusProcessing {
		return d
	}
	s.mu.Lock()
	running := s.processing[sess.ID]
	s.mu.Unlock()
	if running || !s.leaseExpired(d) {
		return d
	}
	s.logger.Printf("checkout: session=%s resetting stale processing status", sess.ID)
	d.Status = domain.StatusIdle
	d.ProcessingSince = nil
	s.store.Save(ctx, sess.ID, d)
	return d
}

func (s *Service) leaseExpired(d domain.CheckoutDraft) bool {
	if d.ProcessingSince == nil {
		return true
	}
	return s.now().Sub(*d.ProcessingSince) > s.lease
}

func (s *Service) view(ctx context.Context, sess Session, d domain.CheckoutDraft) (*View, error) {
	items, err := s.cart.Items(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	return s.viewWithItems(d, items), nil
}

func (s *Service) viewWithItems(d domain.CheckoutDraft, items []domain.CartItem) *View {
	return &View{
		CheckoutDraft: d,
		Reason:        Reason(d.PaymentMethod, d.Status),
		StatusMessage: statusMessage(d.Status),
		PaymentNote:   paymentNote(d),
		Summary:       Summarize(items, d),
	}
}

func normalizeInstallments(v string) string {
	return strconv.Itoa(validate.Installments(v))
}

func set(dst *string, v *string, normalize func(string) string) {
	if v == nil {
		return
	}
	if normalize != nil {
		*dst = normalize(*v)
		return
	}
	*dst = *v
}
