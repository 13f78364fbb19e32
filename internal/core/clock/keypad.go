package clock

import (
	"fmt"
	"strings"
)

// ParseKeypad interprets a raw keypad digit string ("230" → 23:00,
// "0230" → 02:30) as a countdown point for the given quarter. The raw
// string is right-padded with zeros to four digits, the way an official
// types a running clock.
func ParseKeypad(raw string, q Quarter) (Point, error) {
	p, ok := keypadPoint(raw)
	if !ok {
		return Point{}, fmt.Errorf("%w: %q is not a digit sequence", ErrInvalidTime, raw)
	}
	st := Stamp{Quarter: q, Remaining: p}
	if err := st.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// SuggestCorrection applies the single recovery heuristic for a mistyped
// keypad entry: the operator most often omits a leading zero, so the
// digits are shifted right one place ("1234" → "0123") and revalidated.
// Returns false when the shifted value is no better; the caller then
// re-prompts instead of guessing further.
func SuggestCorrection(raw string, q Quarter) (Point, bool) {
	padded := padKeypad(raw)
	if padded == "" {
		return Point{}, false
	}
	shifted := "0" + padded[:3]
	p, ok := keypadPoint(shifted)
	if !ok {
		return Point{}, false
	}
	if err := (Stamp{Quarter: q, Remaining: p}).Validate(); err != nil {
		return Point{}, false
	}
	return p, true
}

func padKeypad(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > 4 {
		return ""
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return raw + strings.Repeat("0", 4-len(raw))
}

func keypadPoint(raw string) (Point, bool) {
	padded := padKeypad(raw)
	if padded == "" {
		return Point{}, false
	}
	mm := int(padded[0]-'0')*10 + int(padded[1]-'0')
	ss := int(padded[2]-'0')*10 + int(padded[3]-'0')
	return Point{Min: mm, Sec: ss}, true
}
