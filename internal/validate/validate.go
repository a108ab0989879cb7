// Package validate holds the two checkout gates: buyer info and card info.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"fluxo-storefront/internal/domain"
)

// FieldError reports the first failing field of a gate.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	postalCodePattern = regexp.MustCompile(`^\d{5}-\d{3}$`)
	phonePattern      = regexp.MustCompile(`^\(\d{2}\)\s\d{4,5}-\d{4}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
	whitespace        = regexp.MustCompile(`\s+`)
)

// States lists the 27 Brazilian federative units accepted for BuyerInfo.State.
var States = []string{
	"AC", "AL", "AP", "AM", "BA", "CE", "DF", "ES", "GO", "MA", "MT", "MS", "MG", "PA",
	"PB", "PR", "PE", "PI", "RJ", "RN", "RS", "RO", "RR", "SC", "SP", "SE", "TO",
}

var stateSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(States))
	for _, s := range States {
		m[s] = struct{}{}
	}
	return m
}()

// MaxInstallments is the largest installment count offered for card payments.
const MaxInstallments = 12

type rule struct {
	field   string
	value   string
	message string
	check   func(string) bool
}

// Buyer checks every BuyerInfo field in display order and stops at the first failure.
func Buyer(b domain.BuyerInfo) *FieldError {
	rules := []rule{
		{field: "name", value: b.Name, message: "Informe seu nome completo."},
		{field: "email", value: b.Email, message: "Informe um e-mail válido.", check: emailPattern.MatchString},
		{field: "postalCode", value: b.PostalCode, message: "Informe o CEP no formato 00000-000.", check: postalCodePattern.MatchString},
		{field: "phone", value: b.Phone, message: "Informe o telefone no formato (00) 00000-0000.", check: phonePattern.MatchString},
		{field: "address", value: b.Address, message: "Informe o endereço completo."},
		{field: "city", value: b.City, message: "Informe a cidade."},
		{field: "state", value: b.State, message: "Selecione o estado.", check: validState},
	}
	return run(rules)
}

// Card checks CardInfo only when the credit card method is selected.
func Card(method domain.PaymentMethod, c domain.CardInfo) *FieldError {
	if method != domain.PaymentCreditCard {
		return nil
	}
	rules := []rule{
		{field: "cardNumber", value: c.Number, message: "Informe um número de cartão válido.", check: func(v string) bool {
			return len(whitespace.ReplaceAllString(v, "")) >= 13
		}},
		{field: "cardName", value: c.Holder, message: "Informe o nome do titular do cartão."},
		{field: "cardExpiry", value: c.Expiry, message: "Informe a validade no formato MM/AA.", check: expiryPattern.MatchString},
		{field: "cardCvv", value: c.CVV, message: "Informe o CVV com 3 ou 4 dígitos.", check: cvvPattern.MatchString},
	}
	return run(rules)
}

// Installments parses an installment count, defaulting to 1 when unset or out of range.
func Installments(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 || n > MaxInstallments {
		return 1
	}
	return n
}

func run(rules []rule) *FieldError {
	for _, r := range rules {
		v := strings.TrimSpace(r.value)
		if v == "" || (r.check != nil && !r.check(v)) {
			return &FieldError{Field: r.field, Message: r.message}
		}
	}
	return nil
}

func validState(v string) bool {
	_, ok := stateSet[v]
	return ok
}
