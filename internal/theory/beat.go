package theory

import (
	"fmt"
	"strconv"
	"strings"
)

// Beat is an exact rational number of beats (quarter notes). Floats are
// forbidden throughout the pipeline; Beat keeps subdivision math exact so
// tick conversion is deterministic.
//
// The zero value is 0 beats.
type Beat struct {
	num int64
	den int64 // 0 is treated as 1 so the zero value is valid
}

// NewBeat returns the reduced rational num/den.
func NewBeat(num, den int64) (Beat, error) {
	if den == 0 {
		return Beat{}, newConfigErr(CodeBadLiteral, "beat denominator must be non-zero")
	}
	return Beat{num: num, den: den}.reduce(), nil
}

// BeatFromInt returns a whole number of beats.
func BeatFromInt(n int64) Beat {
	return Beat{num: n, den: 1}
}

// ParseBeat parses "3", "1.5", or "3/2" into an exact rational.
// Decimal literals are parsed exactly (never through a float).
func ParseBeat(s string) (Beat, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Beat{}, newConfigErr(CodeBadLiteral, "empty beat value")
	}

	if slash := strings.IndexByte(s, '/'); slash >= 0 {
		num, err1 := strconv.ParseInt(strings.TrimSpace(s[:slash]), 10, 64)
		den, err2 := strconv.ParseInt(strings.TrimSpace(s[slash+1:]), 10, 64)
		if err1 != nil || err2 != nil {
			return Beat{}, newConfigErr(CodeBadLiteral, "invalid beat fraction: %q", s)
		}
		return NewBeat(num, den)
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot+1:]
	}
	if intPart == "" {
		intPart = "0"
	}

	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Beat{}, newConfigErr(CodeBadLiteral, "invalid beat value: %q", s)
	}

	num, den := whole, int64(1)
	for _, r := range fracPart {
		if r < '0' || r > '9' {
			return Beat{}, newConfigErr(CodeBadLiteral, "invalid beat value: %q", s)
		}
		num = num*10 + int64(r-'0')
		den *= 10
	}
	if neg {
		num = -num
	}
	return NewBeat(num, den)
}

func (b Beat) reduce() Beat {
	num, den := b.num, b.den
	if den == 0 {
		den = 1
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(abs64(num), den)
	if g > 1 {
		num /= g
		den /= g
	}
	return Beat{num: num, den: den}
}

// Num returns the reduced numerator.
func (b Beat) Num() int64 { return b.reduce().num }

// Den returns the reduced denominator (always >= 1).
func (b Beat) Den() int64 { return b.reduce().den }

// Add returns b + other.
func (b Beat) Add(other Beat) Beat {
	b, other = b.reduce(), other.reduce()
	return Beat{num: b.num*other.den + other.num*b.den, den: b.den * other.den}.reduce()
}

// Sub returns b - other.
func (b Beat) Sub(other Beat) Beat {
	return b.Add(other.Neg())
}

// Neg returns -b.
func (b Beat) Neg() Beat {
	b = b.reduce()
	return Beat{num: -b.num, den: b.den}
}

// MulInt returns b * n.
func (b Beat) MulInt(n int64) Beat {
	b = b.reduce()
	return Beat{num: b.num * n, den: b.den}.reduce()
}

// Mul returns b * other.
func (b Beat) Mul(other Beat) Beat {
	b, other = b.reduce(), other.reduce()
	return Beat{num: b.num * other.num, den: b.den * other.den}.reduce()
}

// Cmp compares b with other: -1 if b < other, 0 if equal, +1 if b > other.
func (b Beat) Cmp(other Beat) int {
	d := b.Sub(other).reduce()
	switch {
	case d.num < 0:
		return -1
	case d.num > 0:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether b is exactly zero.
func (b Beat) IsZero() bool { return b.reduce().num == 0 }

// IsNegative reports whether b is below zero.
func (b Beat) IsNegative() bool { return b.reduce().num < 0 }

// Ticks converts to ticks at the given resolution, truncating toward zero
// when the value does not land on a tick boundary.
func (b Beat) Ticks(ticksPerBeat int) int {
	b = b.reduce()
	return int(b.num * int64(ticksPerBeat) / b.den)
}

// String renders "n" for whole values and "n/d" otherwise. The output is
// accepted by ParseBeat, which is what keeps provenance round-trippable.
func (b Beat) String() string {
	b = b.reduce()
	if b.den == 1 {
		return strconv.FormatInt(b.num, 10)
	}
	return fmt.Sprintf("%d/%d", b.num, b.den)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
