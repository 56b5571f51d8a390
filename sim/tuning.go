package sim

const (
	FrameRate      = 60.0 //directions are expressed per frame at this rate
	LaneHalfWidth  = 1.0  //X is clamped to [-LaneHalfWidth, LaneHalfWidth]
	LaneHalfLength = 4.0  //Y wraps around at ±LaneHalfLength
	RollFactor     = 3.0  //radians of roll per unit of travel
	PlayerSpeed    = 0.05 //default player speed per frame
	NPCFallSpeed   = 0.04 //NPC speed towards -Y per frame
	BallScale      = 0.25 //radius of every ball in world units
	DefaultSeed    = 42   //seed of the NPC spawn source
)

const (
	PlayerMaster = 0 //ball steered on the master instance
	PlayerSlave  = 1 //ball steered on the slave instance
	NPC          = 2 //ball owned by the master and mirrored on the slave
)
