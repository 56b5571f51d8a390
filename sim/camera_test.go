package sim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCameraProjectsOriginToCenter(t *testing.T) {
	c := DefaultCamera(90)
	x, y, ok := c.Project(mgl32.Vec3{0, 0, 0}, 512, 512)
	assert.True(t, ok)
	assert.InDelta(t, 256, x, 0.01)
	assert.InDelta(t, 256, y, 0.01)
}

func TestCameraUpIsUpOnScreen(t *testing.T) {
	c := DefaultCamera(90)
	_, top, _ := c.Project(mgl32.Vec3{0, 1, 0}, 512, 512)
	_, bottom, _ := c.Project(mgl32.Vec3{0, -1, 0}, 512, 512)
	assert.Less(t, top, bottom)
}

func TestCameraHidesPointsBehindEye(t *testing.T) {
	c := DefaultCamera(90)
	_, _, ok := c.Project(mgl32.Vec3{0, 0, -5}, 512, 512)
	assert.False(t, ok)
}

func TestCameraRadiusShrinksWithDistance(t *testing.T) {
	c := DefaultCamera(90)
	near := c.ProjectRadius(mgl32.Vec3{0, 0, 0}, BallScale, 512, 512)
	far := c.ProjectRadius(mgl32.Vec3{0, 0, 10}, BallScale, 512, 512)
	assert.Greater(t, near, far)
	assert.Greater(t, far, float32(0))
}
