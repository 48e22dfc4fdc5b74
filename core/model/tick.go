package model

import "strings"

const MaxTickLen = 8

// NormalizeTick upper-folds a tick and checks the registry constraints:
// 1 to 8 ASCII characters, A-Z or 0-9 only.
func NormalizeTick(tick string) (string, error) {
	tick = strings.ToUpper(strings.TrimSpace(tick))
	if len(tick) == 0 || len(tick) > MaxTickLen {
		return "", ErrInvalidTick
	}
	for i := 0; i < len(tick); i++ {
		c := tick[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return "", ErrInvalidTick
		}
	}
	return tick, nil
}
