package model

// Roster is the payload returned by both stats endpoints. Each category is
// optional and may be missing from the response.
type Roster struct {
	Rushing   []Player `json:"rushing"`
	Kicking   []Player `json:"kicking"`
	Passing   []Player `json:"passing"`
	Receiving []Player `json:"receiving"`
}

// Players flattens the roster into a single list with one record per player.
// When a player shows up in more than one category the record from the
// earliest category wins, in the order rushing, kicking, passing, receiving.
func (r *Roster) Players() []Player {
	if r == nil {
		return []Player{}
	}
	return MergePlayers(r.Rushing, r.Kicking, r.Passing, r.Receiving)
}

// MergePlayers concatenates the lists in order and drops every record whose
// ID has already been seen. The result is never nil.
func MergePlayers(lists ...[]Player) []Player {
	size := 0
	for _, l := range lists {
		size += len(l)
	}

	seen := make(map[string]struct{}, size)
	result := make([]Player, 0, size)
	for _, l := range lists {
		for _, p := range l {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			result = append(result, p)
		}
	}
	return result
}
