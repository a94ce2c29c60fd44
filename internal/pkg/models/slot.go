package models

// Slot names a precedent position in a study.
type Slot string

const (
	SlotLastHome     Slot = "last_home_match"
	SlotLastAway     Slot = "last_away_match"
	SlotH2HStadium   Slot = "h2h_stadium"
	SlotH2HGeneral   Slot = "h2h_general"
	SlotComparativeA Slot = "comp_home_vs_last_away_rival"
	SlotComparativeB Slot = "comp_away_vs_last_home_rival"
	SlotRivalH2H     Slot = "h2h_rivals"
)

// AllSlots is the fixed slot order of every report.
var AllSlots = []Slot{
	SlotLastHome,
	SlotLastAway,
	SlotH2HStadium,
	SlotH2HGeneral,
	SlotComparativeA,
	SlotComparativeB,
	SlotRivalH2H,
}

// Title is a short human label for the slot.
func (s Slot) Title() string {
	switch s {
	case SlotLastHome:
		return "Last home match"
	case SlotLastAway:
		return "Last away match"
	case SlotH2HStadium:
		return "H2H at this stadium"
	case SlotH2HGeneral:
		return "Latest H2H overall"
	case SlotComparativeA:
		return "Home vs last away rival"
	case SlotComparativeB:
		return "Away vs last home rival"
	case SlotRivalH2H:
		return "H2H between last rivals"
	}
	return string(s)
}
