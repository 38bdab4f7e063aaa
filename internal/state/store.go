// Package state keeps the per-actor conversation state: which step of which
// flow an actor is in, and the fields collected so far.
//
// A Store is durable; an actor resumes where they left off after a restart.
// Set replaces the whole row, Clear removes it, and Get on an actor with no
// row returns None and an empty Payload.
package state

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// Name identifies a step in a flow. None means no active flow.
type Name string

const None Name = ""

type Store interface {
	Get(actor int64) (Name, Payload, error)
	Set(actor int64, name Name, p Payload) error
	Clear(actor int64) error
}

// Payload accumulates the fields of an in-progress flow. Values are kept as
// text so that a round trip through storage is exact.
type Payload map[string]string

func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func (p Payload) Str(key string) string { return p[key] }

func (p Payload) SetStr(key, v string) { p[key] = v }

func (p Payload) SetInt(key string, v int64) { p[key] = strconv.FormatInt(v, 10) }

func (p Payload) Int(key string) (int64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	return n, err == nil
}

func (p Payload) SetDecimal(key string, v decimal.Decimal) { p[key] = v.String() }

func (p Payload) Decimal(key string) (decimal.Decimal, bool) {
	v, ok := p[key]
	if !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(v)
	return d, err == nil
}

func encode(p Payload) ([]byte, error) {
	if p == nil {
		p = Payload{}
	}
	return json.Marshal(p)
}

func decode(b []byte) (Payload, error) {
	p := Payload{}
	if len(b) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return Payload{}, err
	}
	return p, nil
}
