package testutils

import "github.com/mww/stats_proxy/model"

// Player ids found in upstreamdata/all_players.json
const (
	EzekielElliottID = "14885"
	ToddGurleyID     = "13934"
	CamNewtonID      = "12171"
	JustinTuckerID   = "11443"
	MattRyanID       = "11119"
	JulioJonesID     = "11675"
)

// AllPlayerIDs is the merged order of upstreamdata/all_players.json.
var AllPlayerIDs = []string{
	EzekielElliottID,
	ToddGurleyID,
	CamNewtonID,
	JustinTuckerID,
	MattRyanID,
	JulioJonesID,
}

// LatestPlayerIDs is the merged order of upstreamdata/latest_players.json.
var LatestPlayerIDs = []string{
	EzekielElliottID,
	JulioJonesID,
}

var (
	EzekielElliott = &model.Player{
		ID:         EzekielElliottID,
		EntryID:    "1",
		Name:       "Ezekiel Elliott",
		Position:   model.POS_RB,
		Yards:      "1631",
		Attempts:   "322",
		Touchdowns: "15",
		Fumbles:    "5",
	}
	JustinTucker = &model.Player{
		ID:                 JustinTuckerID,
		EntryID:            "4",
		Name:               "Justin Tucker",
		Position:           model.POS_K,
		FieldGoalsMade:     "38",
		FieldGoalsAttempts: "39",
		ExtraPointsMade:    "27",
		ExtraPointsAttempt: "28",
	}
)

// PlayerIDs returns the ids of players in order.
func PlayerIDs(players []model.Player) []string {
	ids := make([]string, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
	}
	return ids
}
