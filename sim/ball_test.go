package sim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = float32(1.0 / 60.0)

func TestBallUpdateMovesByDirectionAtSixtyFPS(t *testing.T) {
	b := NewBall(0, 0, 0)
	b.Dir = mgl32.Vec3{0.05, -0.04, 0.01}

	b.Update(frame)

	assert.InDelta(t, 0.05, b.X, 1e-5)
	assert.InDelta(t, -0.04, b.Y, 1e-5)
	assert.InDelta(t, 0.01, b.Z, 1e-5)
}

func TestBallUpdateScalesWithElapsedTime(t *testing.T) {
	b := NewBall(0, 0, 0)
	b.Dir = mgl32.Vec3{0, 0.05, 0}

	b.Update(2 * frame)

	assert.InDelta(t, 0.1, b.Y, 1e-5)
}

func TestBallUpdateClampsX(t *testing.T) {
	b := NewBall(0.98, 0, 0)
	b.Dir = mgl32.Vec3{0.05, 0, 0}
	b.Update(frame)
	require.Equal(t, float32(LaneHalfWidth), b.X)

	b = NewBall(-0.98, 0, 0)
	b.Dir = mgl32.Vec3{-0.05, 0, 0}
	b.Update(frame)
	require.Equal(t, float32(-LaneHalfWidth), b.X)
}

func TestBallUpdateWrapsY(t *testing.T) {
	b := NewBall(0, -3.99, 0)
	b.Dir = mgl32.Vec3{0, -0.05, 0}
	b.Update(frame)
	require.Equal(t, float32(LaneHalfLength), b.Y)

	b = NewBall(0, 3.99, 0)
	b.Dir = mgl32.Vec3{0, 0.05, 0}
	b.Update(frame)
	require.Equal(t, float32(-LaneHalfLength), b.Y)
}

func TestBallUpdateZIsUnbounded(t *testing.T) {
	b := NewBall(0, 0, 100)
	b.Dir = mgl32.Vec3{0, 0, 1}
	b.Update(frame)
	assert.InDelta(t, 101, b.Z, 1e-4)
}

func TestBallRestingKeepsRotation(t *testing.T) {
	b := NewBall(0, 0, 0)
	before := b.Rotation

	for i := 0; i < 10; i++ {
		b.Update(frame)
	}

	assert.True(t, before.ApproxEqual(b.Rotation))
	assert.True(t, mgl32.QuatIdent().ApproxEqual(b.Rotation))
}

func TestBallRollsAroundTravelAxis(t *testing.T) {
	b := NewBall(0, 0, 0)
	b.Dir = mgl32.Vec3{0, 0.05, 0}
	b.Update(frame)

	want := mgl32.QuatRotate(0.05*RollFactor, mgl32.Vec3{-1, 0, 0})
	assert.True(t, want.ApproxEqualThreshold(b.Rotation, 1e-5), "got %v want %v", b.Rotation, want)
	assert.InDelta(t, 1, b.Rotation.Len(), 1e-5)
}

func TestBallDiagonalRollsVerticallyThenHorizontally(t *testing.T) {
	b := NewBall(0, 0, 0)
	b.Dir = mgl32.Vec3{0.05, 0.03, 0}
	b.Update(frame)

	pitch := mgl32.QuatRotate(0.03*RollFactor, mgl32.Vec3{-1, 0, 0})
	yaw := mgl32.QuatRotate(0.05*RollFactor, mgl32.Vec3{0, 1, 0})
	want := yaw.Mul(pitch)
	assert.True(t, want.ApproxEqualThreshold(b.Rotation, 1e-5), "got %v want %v", b.Rotation, want)

	//The opposite order lands somewhere else
	assert.False(t, pitch.Mul(yaw).ApproxEqualThreshold(b.Rotation, 1e-5))
}

func TestBallRotationStaysNormalized(t *testing.T) {
	b := NewBall(0, 0, 0)
	b.Dir = mgl32.Vec3{0.05, 0.05, 0}
	for i := 0; i < 1000; i++ {
		b.Update(frame)
	}
	assert.InDelta(t, 1, b.Rotation.Len(), 1e-4)
}

func TestBallModelTranslates(t *testing.T) {
	b := NewBall(0.5, -2, 0)
	origin := b.Model().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.True(t, mgl32.Vec3{0.5, -2, 0}.ApproxEqual(origin.Vec3()))
}
