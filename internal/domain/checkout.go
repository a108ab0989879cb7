package domain

import "time"

// PaymentMethod is the payment option picked at step 2 of the checkout.
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentPix        PaymentMethod = "pix"
	PaymentBoleto     PaymentMethod = "boleto"
)

// Valid reports whether m is one of the supported payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentPix, PaymentBoleto:
		return true
	}
	return false
}

func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentStatus is the checkout state-machine variable.
type PaymentStatus string

const (
	StatusIdle       PaymentStatus = "idle"
	StatusProcessing PaymentStatus = "processing"
	StatusPaid       PaymentStatus = "paid"
	StatusFailed     PaymentStatus = "failed"
	StatusExpired    PaymentStatus = "expired"
)

// IsTerminal reports whether the status ends a payment attempt.
func (s PaymentStatus) IsTerminal() bool {
	return s == StatusPaid || s == StatusFailed || s == StatusExpired
}

// IsRecoverable reports whether the status allows retry or a method change.
func (s PaymentStatus) IsRecoverable() bool {
	return s == StatusFailed || s == StatusExpired
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusIdle, StatusProcessing, StatusPaid, StatusFailed, StatusExpired:
		return true
	}
	return false
}

func (s PaymentStatus) String() string {
	return string(s)
}

// Wizard steps.
const (
	StepBuyer   = 1
	StepPayment = 2
	StepReview  = 3
)

// BuyerInfo holds the delivery and contact data typed at step 1.
type BuyerInfo struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
}

// CardInfo holds credit card data. Only meaningful for PaymentCreditCard.
type CardInfo struct {
	Number       string `json:"number"`
	Holder       string `json:"holder"`
	Expiry       string `json:"expiry"`
	CVV          string `json:"cvv"`
	Installments string `json:"installments"`
}

// CheckoutDraft is the unit of persistence for an in-progress checkout.
type CheckoutDraft struct {
	BuyerInfo     BuyerInfo     `json:"buyerInfo"`
	CardInfo      CardInfo      `json:"cardInfo"`
	Step          int           `json:"step"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Status        PaymentStatus `json:"status"`

	// ProcessingSince is set while Status is processing.
	ProcessingSince *time.Time `json:"processingSince,omitempty"`
}

// NewCheckoutDraft returns the default draft, prefilled from profile when given.
func NewCheckoutDraft(profile *Profile) CheckoutDraft {
	d := CheckoutDraft{
		CardInfo:      CardInfo{Installments: "1"},
		Step:          StepBuyer,
		PaymentMethod: PaymentCreditCard,
		Status:        StatusIdle,
	}
	if profile == nil {
		return d
	}
	d.BuyerInfo = BuyerInfo{
		Name:       profile.Name,
		Email:      profile.Email,
		PostalCode: profile.PostalCode,
		Phone:      profile.Phone,
		Address:    profile.Address,
		City:       profile.City,
		State:      profile.State,
	}
	d.CardInfo.Holder = profile.Name
	return d
}
