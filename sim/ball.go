package sim

import (
	"github.com/go-gl/mathgl/mgl32"
)

//Ball holds a ball that rolls around the lane
type Ball struct {
	X, Y, Z  float32    //The current position of the ball
	Dir      mgl32.Vec3 //The direction the ball travels in per frame at 60 FPS
	Rotation mgl32.Quat //The accumulated orientation of the ball
}

//NewBall returns a resting ball at the given position
func NewBall(x, y, z float32) *Ball {
	return &Ball{
		X:        x,
		Y:        y,
		Z:        z,
		Rotation: mgl32.QuatRotate(0, mgl32.Vec3{0, 0, 1}),
	}
}

//Position returns the position of the ball as a vector
func (b *Ball) Position() mgl32.Vec3 {
	return mgl32.Vec3{b.X, b.Y, b.Z}
}

//Update moves the ball by its direction, scaled to the elapsed time tdif in seconds
func (b *Ball) Update(tdif float32) {
	dir := b.Dir
	if length := dir.Len(); length != 0 {
		dir = dir.Normalize().Mul(length * tdif * FrameRate)
	}

	b.X += dir.X()
	if b.X > LaneHalfWidth {
		b.X = LaneHalfWidth
	}
	if b.X < -LaneHalfWidth {
		b.X = -LaneHalfWidth
	}

	//Leaving one end of the lane puts the ball back on the other end
	b.Y += dir.Y()
	if b.Y < -LaneHalfLength {
		b.Y = LaneHalfLength
	}
	if b.Y > LaneHalfLength {
		b.Y = -LaneHalfLength
	}

	b.Z += dir.Z()

	if dir.Len() != 0 {
		horizontal := dir.Dot(mgl32.Vec3{1, 0, 0})
		vertical := dir.Dot(mgl32.Vec3{0, 1, 0})

		b.Rotation = rotated(b.Rotation, mgl32.QuatRotate(vertical*RollFactor, mgl32.Vec3{-1, 0, 0}))
		b.Rotation = rotated(b.Rotation, mgl32.QuatRotate(horizontal*RollFactor, mgl32.Vec3{0, 1, 0}))
	}
}

//Model returns the model matrix of the ball
func (b *Ball) Model() mgl32.Mat4 {
	return mgl32.Translate3D(b.X, b.Y, b.Z).Mul4(b.Rotation.Mat4())
}

//rotated applies by on top of q and renormalizes.
func rotated(q, by mgl32.Quat) mgl32.Quat {
	return by.Mul(q).Normalize()
}
