package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

//Axis names one coordinate of a ball position.
type Axis byte

const (
	AxisX Axis = 'x'
	AxisY Axis = 'y'
	AxisZ Axis = 'z'
)

func (a Axis) String() string {
	switch a {
	case AxisX, AxisY, AxisZ:
		return string(rune(a))
	}
	return fmt.Sprintf("axis(%d)", byte(a))
}

//WorldConfig tunes a World.
type WorldConfig struct {
	Speed         float32 //player speed per frame, PlayerSpeed when zero
	Seed          int64   //seed of the NPC spawn source, DefaultSeed when zero
	Authoritative bool    //whether this world decides where the NPC respawns
}

//World holds the three balls and the controls steering the players.
type World struct {
	Balls    [3]*Ball
	Controls [2]Controls

	speed         float32
	authoritative bool
	random        *rand.Rand
}

//NewWorld places both players near the bottom of the lane and the NPC at the top.
func NewWorld(cfg WorldConfig) *World {
	if cfg.Speed == 0 {
		cfg.Speed = PlayerSpeed
	}
	if cfg.Seed == 0 {
		cfg.Seed = DefaultSeed
	}

	w := &World{
		speed:         cfg.Speed,
		authoritative: cfg.Authoritative,
		random:        rand.New(rand.NewSource(cfg.Seed)),
	}
	w.Balls[PlayerMaster] = NewBall(0.5, -2, 0)
	w.Balls[PlayerSlave] = NewBall(-0.5, -2, 0)
	w.Balls[NPC] = NewBall(w.spawnX(), LaneHalfLength, 0)
	return w
}

//Authoritative returns whether the world decides NPC respawns.
func (w *World) Authoritative() bool {
	return w.authoritative
}

//NPC returns the NPC ball.
func (w *World) NPC() *Ball {
	return w.Balls[NPC]
}

//SetControls replaces the controls of a player.
func (w *World) SetControls(player int, c Controls) error {
	if player != PlayerMaster && player != PlayerSlave {
		return fmt.Errorf("no player with index %d", player)
	}
	w.Controls[player] = c
	return nil
}

//SetNPCAxis overwrites a single coordinate of the NPC.
func (w *World) SetNPCAxis(axis Axis, value float32) error {
	if math.IsNaN(float64(value)) || math.IsInf(float64(value), 0) {
		return fmt.Errorf("non-finite %s coordinate %v", axis, value)
	}
	npc := w.Balls[NPC]
	switch axis {
	case AxisX:
		npc.X = value
	case AxisY:
		npc.Y = value
	case AxisZ:
		npc.Z = value
	default:
		return fmt.Errorf("unknown axis %s", axis)
	}
	return nil
}

//ApplyControls turns the current controls into ball directions. The NPC
//always falls, and an authoritative world moves it to a new column right
//after it wrapped to the top of the lane.
func (w *World) ApplyControls() {
	for player := PlayerMaster; player <= PlayerSlave; player++ {
		x, y := w.Controls[player].Direction(w.speed)
		w.Balls[player].Dir = mgl32.Vec3{x, y, w.Balls[player].Dir.Z()}
	}

	npc := w.Balls[NPC]
	npc.Dir = mgl32.Vec3{npc.Dir.X(), -NPCFallSpeed, npc.Dir.Z()}
	if w.authoritative && npc.Y == LaneHalfLength {
		npc.X = w.spawnX()
	}
}

//Step advances the world by tdif seconds.
func (w *World) Step(tdif float32) {
	w.ApplyControls()
	for _, ball := range w.Balls {
		ball.Update(tdif)
	}
}

func (w *World) spawnX() float32 {
	return w.random.Float32()*2*LaneHalfWidth - LaneHalfWidth
}
