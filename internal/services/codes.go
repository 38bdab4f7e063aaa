package services

import (
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"warehousebot/internal/domain"
)

// Display-code prefixes, one per entity type.
const (
	PrefixCategory    = "CAT"
	PrefixSubcategory = "SUB"
	PrefixBrand       = "BRD"
	PrefixMeasureType = "MSR"
	PrefixItem        = "ITM"
)

const codeDigits = 6

// RandomCode returns prefix followed by six random digits.
func RandomCode(prefix string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for range codeDigits {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}

// Codes generates display codes and retries inserts that collide on them.
type Codes struct {
	Attempts int
	Next     func(prefix string) string
}

// insert calls fn with fresh codes until it succeeds, fails for another
// reason, or Attempts collisions have happened.
func (c Codes) insert(prefix string, fn func(code string) (int64, error)) (int64, string, error) {
	attempts := c.Attempts
	if attempts < 1 {
		attempts = 1
	}
	next := c.Next
	if next == nil {
		next = RandomCode
	}
	var err error
	for range attempts {
		code := next(prefix)
		var id int64
		id, err = fn(code)
		if err == nil {
			return id, code, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return 0, "", err
		}
	}
	return 0, "", err
}

// Clock stamps created_at/updated_at in the configured zone.
type Clock struct {
	Loc *time.Location
	Now func() time.Time
}

func (c Clock) Stamp() string {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	t := now()
	if c.Loc != nil {
		t = t.In(c.Loc)
	}
	return t.Format(domain.TimeLayout)
}

// After stamps now, or one microsecond past prev when the clock has not moved
// beyond it, so an update always sorts after the value it replaces.
func (c Clock) After(prev string) string {
	s := c.Stamp()
	if s > prev {
		return s
	}
	loc := c.Loc
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(domain.TimeLayout, prev, loc)
	if err != nil {
		return s
	}
	return t.Add(time.Microsecond).Format(domain.TimeLayout)
}
