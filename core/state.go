package core

// GameState is the full session state captured alongside a turn.
// The memory subsystem stores only a reduced projection of this
// (see memory.StateSnapshot); the engine injects the full state into
// the context window as a structured system message.
type GameState struct {
	// Location is the player's current place in the world.
	Location string `json:"location,omitempty"`

	// Realm is the cultivation realm / progression tier.
	Realm string `json:"realm,omitempty"`

	Health int `json:"health"`
	Mana   int `json:"mana"`

	// ItemsGained lists items acquired during this turn.
	ItemsGained []string `json:"items_gained,omitempty"`

	// RelationsGained lists characters befriended during this turn.
	RelationsGained []string `json:"relations_gained,omitempty"`
}
