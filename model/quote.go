package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Variant tags a quote document. The string values are the wire values the
// frontend switches on.
type Variant string

const (
	VariantPurchase     Variant = "koopsansInruil"
	VariantTradeIn      Variant = "koopMetInruil"
	VariantPrivateLease Variant = "privateLease"
)

// ErrUnknownVariant is returned when a record carries a tag outside the three variants.
var ErrUnknownVariant = errors.New("unknown quote variant")

// Valid reports whether v is one of the known variants.
func (v Variant) Valid() bool {
	switch v {
	case VariantPurchase, VariantTradeIn, VariantPrivateLease:
		return true
	}
	return false
}

// Record is the structured result of analysing one quote document. Its
// concrete type is fixed by the variant: *PurchaseQuote, *TradeInQuote or
// *LeaseQuote. Nil pointer fields mean the value was not found.
type Record interface {
	Variant() Variant
	isRecord()
}

// PurchaseQuote is an outright purchase without a trade-in vehicle.
type PurchaseQuote struct {
	PurchasePrice *Amount `json:"aanschafprijs"`
}

func (*PurchaseQuote) Variant() Variant { return VariantPurchase }
func (*PurchaseQuote) isRecord()        {}

func (q PurchaseQuote) MarshalJSON() ([]byte, error) {
	type plain PurchaseQuote
	return json.Marshal(struct {
		Type Variant `json:"typeOfferte"`
		plain
	}{VariantPurchase, plain(q)})
}

// TradeInVehicle describes the car the customer hands in.
type TradeInVehicle struct {
	LicensePlate *string `json:"kenteken"`
	Value        *Amount `json:"inruilprijs"`
}

// TradeInQuote is a purchase where a trade-in vehicle is part of the deal.
// TotalPayable is the amount after the trade-in value has been deducted.
type TradeInQuote struct {
	TradeIn      TradeInVehicle `json:"inruilAuto"`
	TotalPayable *Amount        `json:"totaalTeBetalen"`
}

func (*TradeInQuote) Variant() Variant { return VariantTradeIn }
func (*TradeInQuote) isRecord()        {}

func (q TradeInQuote) MarshalJSON() ([]byte, error) {
	type plain TradeInQuote
	return json.Marshal(struct {
		Type Variant `json:"typeOfferte"`
		plain
	}{VariantTradeIn, plain(q)})
}

// LeaseQuote is a private lease offer.
type LeaseQuote struct {
	MonthlyPrice *Amount `json:"maandprijs"`
	KmPerYear    *int    `json:"kmPerJaar"`
	TermMonths   *int    `json:"looptijdMaanden"`
	Deductible   *Amount `json:"eigenRisico"`
	Tires        *string `json:"banden"`
}

func (*LeaseQuote) Variant() Variant { return VariantPrivateLease }
func (*LeaseQuote) isRecord()        {}

func (q LeaseQuote) MarshalJSON() ([]byte, error) {
	type plain LeaseQuote
	return json.Marshal(struct {
		Type Variant `json:"typeOfferte"`
		plain
	}{VariantPrivateLease, plain(q)})
}

// DecodeRecord decodes a record produced by one of the MarshalJSON methods
// above, dispatching on its typeOfferte field.
func DecodeRecord(data []byte) (Record, error) {
	var head struct {
		Type Variant `json:"typeOfferte"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}

	if !head.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, head.Type)
	}

	var rec Record
	switch head.Type {
	case VariantPurchase:
		rec = &PurchaseQuote{}
	case VariantTradeIn:
		rec = &TradeInQuote{}
	case VariantPrivateLease:
		rec = &LeaseQuote{}
	}

	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decode %s record: %w", head.Type, err)
	}
	return rec, nil
}
