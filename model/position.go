package model

import (
	"encoding/json"
	"strings"
)

type Position string

const (
	POS_UNKNOWN Position = "UNK"
	POS_QB      Position = "QB"
	POS_RB      Position = "RB"
	POS_WR      Position = "WR"
	POS_TE      Position = "TE"
	POS_K       Position = "K"
)

func ParsePosition(pos string) Position {
	pos = strings.ToLower(strings.TrimSpace(pos))
	switch pos {
	case "qb":
		return POS_QB
	case "rb", "fb":
		return POS_RB
	case "wr":
		return POS_WR
	case "te":
		return POS_TE
	case "k", "pk":
		return POS_K
	default:
		return POS_UNKNOWN
	}
}

// UnmarshalJSON accepts the free-form position strings the stats feed uses.
// A missing or null position decodes to POS_UNKNOWN.
func (p *Position) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil {
		*p = POS_UNKNOWN
		return nil
	}
	*p = ParsePosition(*s)
	return nil
}
