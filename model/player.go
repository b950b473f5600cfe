package model

import "slices"

// Player is one athlete's stat line from a single category of the stats feed.
// Only the fields for that category are set.
type Player struct {
	ID       string   `json:"player_id"`
	EntryID  string   `json:"entry_id,omitempty"`
	Name     string   `json:"name,omitempty"`
	Position Position `json:"position,omitempty"`

	// Rushing, passing and receiving
	Yards         Stat `json:"yds,omitempty"`
	Attempts      Stat `json:"att,omitempty"`
	Touchdowns    Stat `json:"tds,omitempty"`
	Fumbles       Stat `json:"fum,omitempty"`
	Completions   Stat `json:"cmp,omitempty"`
	Interceptions Stat `json:"int,omitempty"`
	Receptions    Stat `json:"rec,omitempty"`

	// Kicking
	FieldGoalsMade     Stat `json:"fld_goals_made,omitempty"`
	FieldGoalsAttempts Stat `json:"fld_goals_att,omitempty"`
	ExtraPointsMade    Stat `json:"extra_pt_made,omitempty"`
	ExtraPointsAttempt Stat `json:"extra_pt_att,omitempty"`
}

// FindPlayer returns the first player with the given id, or nil.
func FindPlayer(players []Player, id string) *Player {
	i := slices.IndexFunc(players, func(p Player) bool { return p.ID == id })
	if i < 0 {
		return nil
	}
	p := players[i]
	return &p
}

// FilterPlayers returns the players whose id is in ids, keeping the order of
// players. Repeated ids do not produce repeated players.
func FilterPlayers(players []Player, ids []string) []Player {
	result := make([]Player, 0, len(ids))
	if len(ids) == 0 {
		return result
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	for _, p := range players {
		if _, found := wanted[p.ID]; found {
			result = append(result, p)
		}
	}
	return result
}
