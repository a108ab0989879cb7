package checkout

import (
	"fmt"
	"strings"

	"fluxo-storefront/internal/domain"
	"fluxo-storefront/internal/validate"
	"github.com/shopspring/decimal"
)

var pixDiscountRate = decimal.RequireFromString("0.05")

// Installment is one entry of the card installment picker.
type Installment struct {
	Count int             `json:"count"`
	Value decimal.Decimal `json:"value"`
}

// Summary is the order recap shown next to every step.
type Summary struct {
	Items              []domain.CartItem `json:"items"`
	TotalItems         int               `json:"totalItems"`
	Subtotal           decimal.Decimal   `json:"subtotal"`
	Discount           decimal.Decimal   `json:"discount"`
	Shipping           decimal.Decimal   `json:"shipping"`
	FreeShipping       bool              `json:"freeShipping"`
	Total              decimal.Decimal   `json:"total"`
	Installments       int               `json:"installments,omitempty"`
	InstallmentValue   decimal.Decimal   `json:"installmentValue"`
	InstallmentOptions []Installment     `json:"installmentOptions,omitempty"`
}

// Summarize prices the cart for the selected method: pix gets 5% off the
// subtotal, card payments are split without interest, shipping is free.
func Summarize(items []domain.CartItem, d domain.CheckoutDraft) Summary {
	cart := domain.NewCart("", items)
	s := Summary{
		Items:        cart.Items,
		TotalItems:   cart.TotalItems,
		Subtotal:     cart.Subtotal.Round(2),
		Discount:     decimal.Zero,
		Shipping:     decimal.Zero,
		FreeShipping: true,
	}
	if d.PaymentMethod == domain.PaymentPix {
		s.Discount = cart.Subtotal.Mul(pixDiscountRate).Round(2)
	}
	s.Total = s.Subtotal.Sub(s.Discount).Add(s.Shipping)

	if d.PaymentMethod == domain.PaymentCreditCard {
		n := validate.Installments(d.CardInfo.Installments)
		s.Installments = n
		s.InstallmentValue = splitEvenly(s.Total, n)
		s.InstallmentOptions = make([]Installment, 0, validate.MaxInstallments)
		for i := 1; i <= validate.MaxInstallments; i++ {
			s.InstallmentOptions = append(s.InstallmentOptions, Installment{Count: i, Value: splitEvenly(s.Total, i)})
		}
	}
	return s
}

func splitEvenly(total decimal.Decimal, n int) decimal.Decimal {
	return total.Div(decimal.NewFromInt(int64(n))).Round(2)
}

// paymentNote describes the selected method on the review step.
func paymentNote(d domain.CheckoutDraft) string {
	switch d.PaymentMethod {
	case domain.PaymentCreditCard:
		digits := strings.ReplaceAll(d.CardInfo.Number, " ", "")
		if len(digits) > 4 {
			digits = digits[len(digits)-4:]
		}
		return fmt.Sprintf("Cartão terminado em %s - %dx", digits, validate.Installments(d.CardInfo.Installments))
	case domain.PaymentPix:
		return "Pix com QR Code válido por 10 minutos."
	case domain.PaymentBoleto:
		return "Boleto com vencimento em 3 dias úteis."
	}
	return ""
}

func statusMessage(status domain.PaymentStatus) string {
	switch status {
	case domain.StatusProcessing:
		return "Processando pagamento..."
	case domain.StatusPaid:
		return "Pagamento aprovado!"
	}
	return ""
}
