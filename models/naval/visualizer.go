package naval

// Visualizer is the rendering-side collaborator. It is purely a sink
// for events produced by the core: it animates projectiles and sets up
// visual state for new enemies (health bar etc.), and never feeds
// combat logic back in.
type Visualizer interface {
	InitializeEnemyShip(ship *Ship)
	ShotFired(attacker, defender *Ship, damage int, wasMiss bool)
}

type NopVisualizer struct{}

var _ Visualizer = NopVisualizer{}

func (NopVisualizer) InitializeEnemyShip(ship *Ship) {}

func (NopVisualizer) ShotFired(attacker, defender *Ship, damage int, wasMiss bool) {}
