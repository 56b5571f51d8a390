package window

import (
	"image/color"

	"github.com/StickFightDev/ballsync/sim"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var markerColor = color.RGBA{0x22, 0x22, 0x22, 0xff}

//drawLane fills the strip the balls roll on. The lane faces the camera, so
//it projects to an axis aligned rectangle.
func (w *Window) drawLane(screen *ebiten.Image) {
	const halfWidth = sim.LaneHalfWidth + sim.BallScale
	x0, y0, ok := w.camera.Project(mgl32.Vec3{-halfWidth, sim.LaneHalfLength, sim.BallScale}, w.width, w.height)
	if !ok {
		return
	}
	x1, y1, ok := w.camera.Project(mgl32.Vec3{halfWidth, -sim.LaneHalfLength, sim.BallScale}, w.width, w.height)
	if !ok {
		return
	}
	left, top := min(x0, x1), min(y0, y1)
	vector.DrawFilledRect(screen, left, top, max(x0, x1)-left, max(y0, y1)-top, w.lane, false)
}

//drawBall draws a ball and a marker on its surface so the roll is visible.
func (w *Window) drawBall(screen *ebiten.Image, ball *sim.Ball, clr color.RGBA) {
	pos := ball.Position()
	x, y, ok := w.camera.Project(pos, w.width, w.height)
	if !ok {
		return
	}
	r := w.camera.ProjectRadius(pos, sim.BallScale, w.width, w.height)
	vector.DrawFilledCircle(screen, x, y, r, clr, true)

	//The marker sits where the ball's local -Z axis pierces the surface.
	surface := ball.Model().Mul4x1(mgl32.Vec4{0, 0, -sim.BallScale, 1}).Vec3()
	mx, my, ok := w.camera.Project(surface, w.width, w.height)
	if !ok {
		return
	}
	vector.StrokeLine(screen, x, y, mx, my, 2, markerColor, true)
}
