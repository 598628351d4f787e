package ordernum

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

// Confirmed-order and backorder numbers share a shape but carry distinct
// prefixes, so a human can tell them apart without querying status.
const (
	ConfirmedPrefix = "ORD"
	DraftPrefix     = "BO"
)

const suffixAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
const suffixLength = 6

// Confirmed returns a confirmed-order number, e.g. ORD-20260831-7KQ2MX.
func Confirmed(now time.Time) string {
	return format(ConfirmedPrefix, now)
}

// Draft returns a backorder-draft number, e.g. BO-20260831-XH4TP9.
func Draft(now time.Time) string {
	return format(DraftPrefix, now)
}

// IsDraft reports whether the number uses the backorder scheme.
func IsDraft(number string) bool {
	return strings.HasPrefix(number, DraftPrefix+"-")
}

// IsConfirmed reports whether the number uses the confirmed-order scheme.
func IsConfirmed(number string) bool {
	return strings.HasPrefix(number, ConfirmedPrefix+"-")
}

func format(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("20060102"), randomSuffix())
}

func randomSuffix() string {
	buf := make([]byte, suffixLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure means the process is in far deeper trouble;
		// fall back to a clock-derived suffix rather than panic mid-checkout.
		stamp := fmt.Sprintf("%06d", time.Now().UnixNano()%1000000)
		return stamp
	}
	out := make([]byte, suffixLength)
	for i, b := range buf {
		out[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}
	return string(out)
}
