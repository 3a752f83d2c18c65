package lender

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindIndividual Kind = "individual"
	KindBusiness   Kind = "business"
)

func (k Kind) Valid() bool { return k == KindIndividual || k == KindBusiness }

// Ref identifies a lender by owner.
type Ref struct {
	Kind Kind
	ID   string
}

func (r Ref) String() string { return string(r.Kind) + ":" + r.ID }

// Capacity is the capital aggregate of one lender.
type Capacity struct {
	Pool     decimal.Decimal
	Reserved decimal.Decimal
}

func (c Capacity) Available() decimal.Decimal { return c.Pool.Sub(c.Reserved) }

// EligibilityInputs are the preference fields the eligibility filter reads.
type EligibilityInputs struct {
	DefaultRate    decimal.Decimal
	MinAmount      decimal.Decimal
	MaxAmount      decimal.Decimal // zero means no cap
	Countries      []string
	States         []string
	AllowFirstTime bool
	FirstTimeLimit *decimal.Decimal
}

// Lender is either *Individual or *Business.
type Lender interface {
	Ref() Ref
	PreferenceID() uint64
	AutoAccept() bool
	Capacity() Capacity
	EligibilityInputs() EligibilityInputs
	sealed()
}

type base struct {
	ref        Ref
	prefID     uint64
	autoAccept bool
	capacity   Capacity
	inputs     EligibilityInputs
}

func (b *base) Ref() Ref                             { return b.ref }
func (b *base) PreferenceID() uint64                 { return b.prefID }
func (b *base) AutoAccept() bool                     { return b.autoAccept }
func (b *base) Capacity() Capacity                   { return b.capacity }
func (b *base) EligibilityInputs() EligibilityInputs { return b.inputs }
func (b *base) sealed()                              {}

type Individual struct{ base }

// Business carries the loan types the business explicitly supports.
// An empty list means every type is accepted.
type Business struct {
	base
	LoanTypes []string
}

// Supports reports whether loanType is explicitly configured.
func (b *Business) Supports(loanType string) bool {
	for _, t := range b.LoanTypes {
		if strings.EqualFold(t, loanType) {
			return true
		}
	}
	return false
}

// Ref returns the owner reference, rejecting rows with both or neither owner set.
func (p *Preference) Ref() (Ref, error) {
	hasUser := p.UserID != nil && *p.UserID != ""
	hasBiz := p.BusinessID != nil && *p.BusinessID != ""
	switch {
	case hasUser && hasBiz:
		return Ref{}, fmt.Errorf("preference %d: %w", p.ID, ErrInvalidOwner)
	case hasUser:
		return Ref{Kind: KindIndividual, ID: *p.UserID}, nil
	case hasBiz:
		return Ref{Kind: KindBusiness, ID: *p.BusinessID}, nil
	}
	return Ref{}, fmt.Errorf("preference %d: %w", p.ID, ErrInvalidOwner)
}

// Convert builds the typed lender. loanTypes is ignored for individuals.
func Convert(p *Preference, loanTypes []string) (Lender, error) {
	ref, err := p.Ref()
	if err != nil {
		return nil, err
	}
	b := base{
		ref:        ref,
		prefID:     p.ID,
		autoAccept: p.AutoAccept,
		capacity:   Capacity{Pool: p.CapitalPool, Reserved: p.CapitalReserved},
		inputs: EligibilityInputs{
			DefaultRate:    p.InterestRate,
			MinAmount:      p.MinAmount,
			MaxAmount:      p.MaxAmount,
			Countries:      p.Countries,
			States:         p.States,
			AllowFirstTime: p.AllowFirstTime,
			FirstTimeLimit: p.FirstTimeLimit,
		},
	}
	if ref.Kind == KindBusiness {
		return &Business{base: b, LoanTypes: loanTypes}, nil
	}
	return &Individual{base: b}, nil
}
