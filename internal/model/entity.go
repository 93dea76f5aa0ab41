package model

// EntityKind identifies the class of a canonical named entity.
type EntityKind string

const (
	EntityTeam   EntityKind = "team"
	EntityOwner  EntityKind = "owner"
	EntityPlayer EntityKind = "player"

	// EntityUnknown marks a mention whose kind the question's phrasing
	// does not reveal. The planner settles it against the registry before
	// any fetch depends on it.
	EntityUnknown EntityKind = "unknown"
)

// Entity is a canonical named thing in the league: a fantasy team, the
// owner behind it, or an NFL player. Entities are loaded from the league
// store by the sync job and treated as read-only by the query pipeline.
type Entity struct {
	ID      string     `json:"id"`
	Kind    EntityKind `json:"kind"`
	Name    string     `json:"name"`
	Aliases []string   `json:"aliases,omitempty"`

	// Team fields.
	RosterID int      `json:"roster_id,omitempty"`
	Wins     int      `json:"wins,omitempty"`
	Losses   int      `json:"losses,omitempty"`
	Points   float64  `json:"points,omitempty"`
	Players  []string `json:"players,omitempty"`
	Starters []string `json:"starters,omitempty"`
	Reserve  []string `json:"reserve,omitempty"`

	// Player fields.
	Position string `json:"position,omitempty"`
	ProTeam  string `json:"pro_team,omitempty"`
}

// Registry is an immutable snapshot of all canonical entities, grouped by
// kind. It is rebuilt wholesale when the sync job refreshes league data;
// a resolver holding an old snapshot keeps returning consistent results.
type Registry struct {
	byKind map[EntityKind][]Entity
}

// NewRegistry builds a registry snapshot from a flat entity list.
func NewRegistry(entities []Entity) *Registry {
	byKind := make(map[EntityKind][]Entity)
	for _, e := range entities {
		byKind[e.Kind] = append(byKind[e.Kind], e)
	}
	return &Registry{byKind: byKind}
}

// Kind returns all entities of the given kind. The returned slice must not
// be mutated.
func (r *Registry) Kind(kind EntityKind) []Entity {
	return r.byKind[kind]
}

// Len returns the total number of entities in the snapshot.
func (r *Registry) Len() int {
	n := 0
	for _, es := range r.byKind {
		n += len(es)
	}
	return n
}
