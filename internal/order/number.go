package order

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const (
	numberPrefix     = "ORD-"
	suffixLen        = 5
	suffixAlphabet   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	maxNumberRetries = 3
)

// GenerateNumber returns a human-readable order number of the form
// ORD-<base36 timestamp>-<random suffix>. Uniqueness is not guaranteed
// here; the orders table constraint is, and the commit retries with a
// fresh number on conflict.
func GenerateNumber() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	suffix := make([]byte, suffixLen)
	for i := range suffix {
		suffix[i] = suffixAlphabet[rand.Intn(len(suffixAlphabet))]
	}
	return numberPrefix + ts + "-" + string(suffix)
}
