package sim

import (
	"github.com/go-gl/mathgl/mgl32"
)

//Camera looks down the lane from behind the origin.
type Camera struct {
	Eye         mgl32.Vec3
	Center      mgl32.Vec3
	Up          mgl32.Vec3
	FieldOfView float32 //vertical, in degrees
	Near, Far   float32
}

//DefaultCamera returns the camera the scene is rendered with.
func DefaultCamera(fov float32) Camera {
	if fov <= 0 {
		fov = 90
	}
	return Camera{
		Eye:         mgl32.Vec3{0, 0, -2.25},
		Center:      mgl32.Vec3{0, 0, 0},
		Up:          mgl32.Vec3{0, 1, 0},
		FieldOfView: fov,
		Near:        0.1,
		Far:         100,
	}
}

//View returns the view matrix.
func (c Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Center, c.Up)
}

//Projection returns the perspective matrix for a viewport of the given size.
func (c Camera) Projection(width, height int) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FieldOfView), float32(width)/float32(height), c.Near, c.Far)
}

//Project maps a world point to pixel coordinates with the origin in the top
//left corner. visible is false for points behind the camera.
func (c Camera) Project(p mgl32.Vec3, width, height int) (x, y float32, visible bool) {
	eye := c.View().Mul4x1(p.Vec4(1))
	if eye.Z() >= 0 {
		return 0, 0, false
	}
	win := mgl32.Project(p, c.View(), c.Projection(width, height), 0, 0, width, height)
	return win.X(), float32(height) - win.Y(), true
}

//ProjectRadius returns the on-screen radius of a sphere of radius r centered at p.
func (c Camera) ProjectRadius(p mgl32.Vec3, r float32, width, height int) float32 {
	cx, cy, ok := c.Project(p, width, height)
	if !ok {
		return 0
	}
	ex, ey, ok := c.Project(p.Add(c.Up.Normalize().Mul(r)), width, height)
	if !ok {
		return 0
	}
	return mgl32.Vec2{ex - cx, ey - cy}.Len()
}
