// Package render turns a quote record into what the sales desk works with:
// the form section to show, the values for its inputs and a draft email to
// the customer.
package render

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/Jurgenvdlecq/seatemail/model"
)

// ErrUnknownVariant is returned for records that have no form section or
// email template.
var ErrUnknownVariant = errors.New("onbekend type offerte ontvangen")

// Form sections, one per variant.
const (
	SectionPurchase = "koopZonderInruilVelden"
	SectionTradeIn  = "koopMetInruilVelden"
	SectionLease    = "privateLeaseVelden"
)

// Signature is the closing block of every email.
type Signature struct {
	Name   string `yaml:"name" json:"name"`
	Title  string `yaml:"title" json:"title"`
	Phone  string `yaml:"phone" json:"phone"`
	Email  string `yaml:"email" json:"email"`
	Client string `yaml:"client" json:"client"`
}

// DefaultSignature holds the placeholders the sales desk fills in by hand.
func DefaultSignature() Signature {
	return Signature{
		Name:   "[Uw Naam]",
		Title:  "Verkoopmanager SEAT/CUPRA Wittebrug",
		Phone:  "06-12 34 56 78",
		Email:  "verkoop@wittebrug.nl",
		Client: "[Klantnaam]",
	}
}

func (s Signature) withDefaults() Signature {
	d := DefaultSignature()
	if s.Name == "" {
		s.Name = d.Name
	}
	if s.Title == "" {
		s.Title = d.Title
	}
	if s.Phone == "" {
		s.Phone = d.Phone
	}
	if s.Email == "" {
		s.Email = d.Email
	}
	if s.Client == "" {
		s.Client = d.Client
	}
	return s
}

// View is the rendered presentation of one record.
type View struct {
	Variant model.Variant     `json:"typeOfferte"`
	Section string            `json:"sectie"`
	Fields  map[string]string `json:"velden"`
	Email   string            `json:"email"`
}

var funcs = template.FuncMap{
	"euro":  Euro,
	"count": Count,
	"text":  Text,
}

var (
	purchaseTmpl = template.Must(template.New("koop").Funcs(funcs).Parse(purchaseEmail + signatureBlock))
	tradeInTmpl  = template.Must(template.New("inruil").Funcs(funcs).Parse(tradeInEmail + signatureBlock))
	leaseTmpl    = template.Must(template.New("lease").Funcs(funcs).Parse(leaseEmail + signatureBlock))
)

type emailData struct {
	Sig   Signature
	Quote any
	// CarPrice is the price before trade-in; nil unless both parts are known.
	CarPrice *model.Amount
}

// Render builds the view for rec. Records of an unknown type, including a nil
// record, return ErrUnknownVariant.
func Render(rec model.Record, sig Signature) (View, error) {
	sig = sig.withDefaults()

	var (
		view View
		tmpl *template.Template
		data = emailData{Sig: sig, Quote: rec}
	)

	switch q := rec.(type) {
	case *model.PurchaseQuote:
		if q == nil {
			return View{}, ErrUnknownVariant
		}
		tmpl = purchaseTmpl
		view = View{
			Section: SectionPurchase,
			Fields: map[string]string{
				"aanschafprijs": fieldAmount(q.PurchasePrice),
			},
		}
	case *model.TradeInQuote:
		if q == nil {
			return View{}, ErrUnknownVariant
		}
		tmpl = tradeInTmpl
		if q.TotalPayable != nil && q.TradeIn.Value != nil {
			sum := q.TotalPayable.Add(*q.TradeIn.Value)
			data.CarPrice = &sum
		}
		view = View{
			Section: SectionTradeIn,
			Fields: map[string]string{
				"inruilKenteken":  fieldText(q.TradeIn.LicensePlate),
				"inruilPrijs":     fieldAmount(q.TradeIn.Value),
				"totaalTeBetalen": fieldAmount(q.TotalPayable),
			},
		}
	case *model.LeaseQuote:
		if q == nil {
			return View{}, ErrUnknownVariant
		}
		tmpl = leaseTmpl
		view = View{
			Section: SectionLease,
			Fields: map[string]string{
				"leaseMaandprijs":  fieldAmount(q.MonthlyPrice),
				"leaseKmPerJaar":   fieldInt(q.KmPerYear),
				"leaseLooptijd":    fieldInt(q.TermMonths),
				"leaseEigenRisico": fieldAmount(q.Deductible),
				"leaseBanden":      fieldText(q.Tires),
			},
		}
	default:
		return View{}, ErrUnknownVariant
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return View{}, fmt.Errorf("render %s email: %w", rec.Variant(), err)
	}
	view.Variant = rec.Variant()
	view.Email = strings.TrimSpace(b.String())
	return view, nil
}
