package physics

const (
	GroundCheckDistance    = 0.001
	CollisionAxisTolerance = 1e-9

	DefaultActorWidth  = 0.6
	DefaultActorHeight = 1.8
)
