package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"strings"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns the board seed for a title on a date using
// HMAC(salt, "YYYY-MM-DD|title"). Every player gets the same board that day.
// The result is never 0, which the engines treat as "seed from the clock".
func Seed(date time.Time, salt, title string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date) + "|" + strings.ToLower(strings.TrimSpace(title))))
	sum := h.Sum(nil)
	// first 8 bytes, top bit cleared so the seed stays positive
	n := int64(binary.BigEndian.Uint64(sum[:8]) >> 1)
	if n == 0 {
		n = 1
	}
	return n
}
