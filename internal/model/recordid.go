package model

import (
	"errors"
	"fmt"
	"strings"
)

// Table names used as record id prefixes.
const (
	TablePet      = "pet"
	TableAdoption = "adoption"
	TableUser     = "user"
	TableCampaign = "campaign"
	TablePayment  = "payment"
)

// ErrInvalidID indicates a malformed record id.
var ErrInvalidID = errors.New("invalid id")

// NormalizeRecordID accepts either a full record id ("campaign:abc") or a bare
// key ("abc") and returns the full form for the given table.
func NormalizeRecordID(table, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	key := raw
	if prefix, rest, ok := strings.Cut(raw, ":"); ok {
		if prefix != table {
			return "", fmt.Errorf("%w: %q is not a %s id", ErrInvalidID, raw, table)
		}
		key = rest
	}
	if key == "" || len(key) > 64 {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	for _, c := range key {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidID, raw)
		}
	}
	return table + ":" + key, nil
}
