package model

import (
	"fmt"
	"strings"
)

// ListType selects one of the two independently cached player lists.
type ListType int

const (
	AllPlayers ListType = iota
	LatestPlayers
)

func (l ListType) CacheKey() string {
	if l == LatestPlayers {
		return "LatestPlayers"
	}
	return "AllPlayers"
}

func (l ListType) String() string {
	return l.CacheKey()
}

// ParseListType accepts the cache key of a list, case insensitive. "all" and
// "latest" are accepted as short forms.
func ParseListType(s string) (ListType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "allplayers", "all":
		return AllPlayers, nil
	case "latestplayers", "latest":
		return LatestPlayers, nil
	default:
		return AllPlayers, fmt.Errorf("unknown player list: '%s'", s)
	}
}
