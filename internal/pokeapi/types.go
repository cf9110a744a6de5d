package pokeapi

import "fmt"

// NamedResource is PokeAPI's {name, url} reference shape.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CreatureRaw represents the raw /pokemon/{name} response
type CreatureRaw struct {
	ID      int           `json:"id"`
	Name    string        `json:"name"`
	Types   []TypeSlotRaw `json:"types"`
	Sprites SpritesRaw    `json:"sprites"`
	Moves   []MoveRefRaw  `json:"moves"`
}

type TypeSlotRaw struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

type SpritesRaw struct {
	FrontDefault *string `json:"front_default"`
}

// MoveRefRaw is a move reference inside a creature resource.
type MoveRefRaw struct {
	Move                NamedResource           `json:"move"`
	VersionGroupDetails []VersionGroupDetailRaw `json:"version_group_details"`
}

type VersionGroupDetailRaw struct {
	LevelLearnedAt  int           `json:"level_learned_at"`
	MoveLearnMethod NamedResource `json:"move_learn_method"`
	VersionGroup    NamedResource `json:"version_group"`
}

// MoveRaw represents the raw /move/{name} response
type MoveRaw struct {
	ID         int           `json:"id"`
	Name       string        `json:"name"`
	Type       NamedResource `json:"type"`
	Generation NamedResource `json:"generation"`
}

// PrimaryType is the first listed type, in the API's own order.
func (c *CreatureRaw) PrimaryType() string {
	if len(c.Types) == 0 {
		return ""
	}
	return c.Types[0].Type.Name
}

// ImageRef returns the default sprite URL or "" when the API has none.
func (c *CreatureRaw) ImageRef() string {
	if c.Sprites.FrontDefault == nil {
		return ""
	}
	return *c.Sprites.FrontDefault
}

// FirstDetail returns the first version-group detail, zero value when absent.
func (m *MoveRefRaw) FirstDetail() VersionGroupDetailRaw {
	if len(m.VersionGroupDetails) == 0 {
		return VersionGroupDetailRaw{}
	}
	return m.VersionGroupDetails[0]
}

func (c *CreatureRaw) validate() error {
	if c.Name == "" {
		return fmt.Errorf("missing name")
	}
	if c.PrimaryType() == "" {
		return fmt.Errorf("missing types")
	}
	for i, ref := range c.Moves {
		if ref.Move.Name == "" {
			return fmt.Errorf("move reference %d has no name", i)
		}
		if ref.Move.URL == "" {
			return fmt.Errorf("move reference %q has no url", ref.Move.Name)
		}
		for _, detail := range ref.VersionGroupDetails {
			if detail.LevelLearnedAt < 0 {
				return fmt.Errorf("move reference %q has negative level", ref.Move.Name)
			}
		}
	}
	return nil
}

func (m *MoveRaw) validate() error {
	if m.Name == "" {
		return fmt.Errorf("missing name")
	}
	if m.Type.Name == "" {
		return fmt.Errorf("missing type")
	}
	return nil
}
