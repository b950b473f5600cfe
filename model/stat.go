package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Stat is one numeric stat from the stats feed, kept in the feed's own
// formatting. The feed sends some numbers quoted. Anything that is not a
// number, like an empty string, decodes to a missing stat.
type Stat string

func (s *Stat) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	if len(raw) > 0 && raw[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return err
		}
		raw = []byte(strings.TrimSpace(str))
	}

	if !isNumber(raw) {
		*s = ""
		return nil
	}
	*s = Stat(raw)
	return nil
}

func (s Stat) MarshalJSON() ([]byte, error) {
	if s == "" {
		return []byte("null"), nil
	}
	return []byte(s), nil
}

func (s Stat) String() string {
	return string(s)
}

func isNumber(b []byte) bool {
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return false
	}
	var f float64
	return json.Unmarshal(b, &f) == nil
}
