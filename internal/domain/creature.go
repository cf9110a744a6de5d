package domain

import "time"

// CreatureType is the elemental category shared by creatures and moves.
type CreatureType string

const (
	TypeNormal   CreatureType = "normal"
	TypeFire     CreatureType = "fire"
	TypeFighting CreatureType = "fighting"
	TypeWater    CreatureType = "water"
	TypeFlying   CreatureType = "flying"
	TypeGrass    CreatureType = "grass"
	TypePoison   CreatureType = "poison"
	TypeElectric CreatureType = "electric"
	TypeGround   CreatureType = "ground"
	TypePsychic  CreatureType = "psychic"
	TypeRock     CreatureType = "rock"
	TypeIce      CreatureType = "ice"
	TypeBug      CreatureType = "bug"
	TypeDragon   CreatureType = "dragon"
	TypeGhost    CreatureType = "ghost"
	TypeDark     CreatureType = "dark"
	TypeSteel    CreatureType = "steel"
	TypeFairy    CreatureType = "fairy"
)

func (t CreatureType) String() string {
	return string(t)
}

// IsKnown reports whether t is one of the 18 standard categories.
func (t CreatureType) IsKnown() bool {
	switch t {
	case TypeNormal, TypeFire, TypeFighting, TypeWater, TypeFlying, TypeGrass,
		TypePoison, TypeElectric, TypeGround, TypePsychic, TypeRock, TypeIce,
		TypeBug, TypeDragon, TypeGhost, TypeDark, TypeSteel, TypeFairy:
		return true
	default:
		return false
	}
}

// Creature is the normalized record returned by a lookup and persisted under
// creature:<name>.
type Creature struct {
	Name        string       `json:"name"`
	PrimaryType CreatureType `json:"primaryType"`
	ImageRef    string       `json:"imageRef"`
	Moves       []Move       `json:"moves"`
	CachedAt    time.Time    `json:"cachedAt"`
}

// Move is one learnable move of a creature, joined with its catalog detail.
type Move struct {
	Name           string       `json:"name"`
	Type           CreatureType `json:"type"`
	Generation     string       `json:"generation,omitempty"`
	LevelLearnedAt int          `json:"levelLearnedAt"`
	LearnMethod    string       `json:"learnMethod"`
	VersionGroup   string       `json:"versionGroup"`
	LearnedBy      string       `json:"learnedBy,omitempty"`
}

// MoveDetail is a MoveCatalog entry, independent of any creature.
type MoveDetail struct {
	Name       string       `json:"name"`
	Type       CreatureType `json:"type"`
	Generation string       `json:"generation,omitempty"`
}

// OwnMoves returns the moves whose back-reference points at this creature.
func (c *Creature) OwnMoves() []Move {
	if c == nil {
		return nil
	}
	own := make([]Move, 0, len(c.Moves))
	for _, m := range c.Moves {
		if m.LearnedBy == c.Name {
			own = append(own, m)
		}
	}
	return own
}

// IsExpired reports whether the record is older than ttl. A zero ttl never expires.
func (c *Creature) IsExpired(ttl time.Duration, now time.Time) bool {
	if c == nil || ttl <= 0 {
		return false
	}
	return now.Sub(c.CachedAt) > ttl
}
