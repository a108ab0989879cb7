package checkout

import (
	"context"
	"math/rand"
	"time"

	"fluxo-storefront/internal/domain"
	"fluxo-storefront/internal/service/shared"
)

const DefaultPaymentDelay = 1500 * time.Millisecond

// RandomSource yields uniform samples in [0,1).
type RandomSource interface {
	Float64() float64
}

// RandomFunc adapts a function to RandomSource.
type RandomFunc func() float64

func (f RandomFunc) Float64() float64 { return f() }

// Outcome is the resolved result of one simulated payment.
type Outcome struct {
	Status domain.PaymentStatus
	Reason string
}

const (
	reasonFailed        = "Não foi possível processar o pagamento. Verifique os dados e tente novamente."
	reasonPixExpired    = "O QR Code expirou antes da confirmação. Gere um novo para tentar novamente."
	reasonBoletoExpired = "O boleto expirou. É necessário gerar um novo para concluir o pedido."
)

// Decide maps a sample to an outcome using the per-method thresholds.
func Decide(method domain.PaymentMethod, sample float64) Outcome {
	status := domain.StatusPaid
	switch method {
	case domain.PaymentCreditCard:
		if sample > 0.75 {
			status = domain.StatusFailed
		}
	case domain.PaymentPix:
		switch {
		case sample < 0.10:
			status = domain.StatusFailed
		case sample < 0.30:
			status = domain.StatusExpired
		}
	case domain.PaymentBoleto:
		switch {
		case sample < 0.40:
			status = domain.StatusExpired
		case sample < 0.60:
			status = domain.StatusFailed
		}
	}
	return Outcome{Status: status, Reason: Reason(method, status)}
}

// Reason is the shopper-facing explanation for a failed or expired payment.
func Reason(method domain.PaymentMethod, status domain.PaymentStatus) string {
	switch status {
	case domain.StatusFailed:
		return reasonFailed
	case domain.StatusExpired:
		if method == domain.PaymentPix {
			return reasonPixExpired
		}
		return reasonBoletoExpired
	}
	return ""
}

// Simulator stands in for a payment gateway: it waits a fixed delay and then
// draws exactly one sample to pick the outcome.
type Simulator struct {
	delay  time.Duration
	source RandomSource
}

// NewSimulator uses math/rand/v2 when source is nil.
func NewSimulator(delay time.Duration, source RandomSource) *Simulator {
	if source == nil {
		source = RandomFunc(rand.Float64)
	}
	return &Simulator{delay: delay, source: source}
}

// Delay is the wait before each outcome is drawn.
func (s *Simulator) Delay() time.Duration {
	return s.delay
}

// Simulate waits the configured delay, then draws one sample and decides the outcome.
func (s *Simulator) Simulate(ctx context.Context, method domain.PaymentMethod) (Outcome, error) {
	if err := shared.SleepOrDone(ctx, s.delay); err != nil {
		return Outcome{}, err
	}
	return Decide(method, s.source.Float64()), nil
}
