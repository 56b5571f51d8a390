package window

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/StickFightDev/ballsync/config"
	"github.com/StickFightDev/ballsync/game"
	"github.com/StickFightDev/ballsync/peer"
	"github.com/StickFightDev/ballsync/sim"
	"github.com/ebitengine/debugui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

//keyBindings maps each role to the keys steering its ball
var keyBindings = map[peer.Role][4]ebiten.Key{
	peer.RoleMaster: {ebiten.KeyArrowLeft, ebiten.KeyArrowRight, ebiten.KeyArrowUp, ebiten.KeyArrowDown},
	peer.RoleSlave:  {ebiten.KeyA, ebiten.KeyD, ebiten.KeyW, ebiten.KeyS},
}

//Status is the part of the peer shown in the overlay
type Status interface {
	Status() *peer.Status
}

//Window draws a session and feeds it keyboard input
type Window struct {
	session *game.Session
	status  Status
	camera  sim.Camera

	width, height int
	background    color.RGBA
	lane          color.RGBA
	balls         [3]color.RGBA

	debugui  debugui.DebugUI
	overlay  bool
	lastTime time.Time
}

//New returns a window for the session
func New(session *game.Session, status Status, cfg config.Window) *Window {
	w := &Window{
		session:    session,
		status:     status,
		camera:     sim.DefaultCamera(cfg.FieldOfView),
		width:      cfg.Width,
		height:     cfg.Height,
		background: cfg.Background.RGBA(),
		lane:       cfg.Lane.RGBA(),
	}
	for i := range w.balls {
		w.balls[i] = cfg.Balls[i].RGBA()
	}
	return w
}

//Title returns the window title of a role
func Title(role peer.Role) string {
	if role == peer.RoleMaster {
		return "Exercise - Master"
	}
	return "Exercise - Slave"
}

//Run opens the window and blocks until it is closed
func (w *Window) Run() error {
	ebiten.SetWindowSize(w.width, w.height)
	ebiten.SetWindowTitle(Title(w.session.Role))
	return ebiten.RunGame(w)
}

func (w *Window) controls() sim.Controls {
	keys := keyBindings[w.session.Role]
	return sim.Controls{
		Left:  ebiten.IsKeyPressed(keys[0]),
		Right: ebiten.IsKeyPressed(keys[1]),
		Up:    ebiten.IsKeyPressed(keys[2]),
		Down:  ebiten.IsKeyPressed(keys[3]),
	}
}

//Update advances the session by the wall time elapsed since the previous frame
func (w *Window) Update() error {
	now := time.Now()
	if w.lastTime.IsZero() {
		w.lastTime = now
	}
	tdif := float32(now.Sub(w.lastTime).Seconds())
	w.lastTime = now

	if err := w.session.Frame(tdif, w.controls()); err != nil {
		return err
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		w.overlay = !w.overlay
	}
	if !w.overlay {
		return nil
	}

	_, err := w.debugui.Update(func(ctx *debugui.Context) error {
		ctx.Window("Peer", image.Rect(0, 0, 220, 200), func(layout debugui.ContainerLayout) {
			st := w.status.Status()
			npc := w.session.World.NPC()
			ctx.Text(fmt.Sprintf("role: %s\njoined: %v left: %v\nsent: %d\nreceived: %d\ndropped: %d\nframes: %d\nnpc: %.2f %.2f %.2f",
				st.Role, st.Joined, st.Left, st.Sent, st.Received, st.Dropped, w.session.Frames(), npc.X, npc.Y, npc.Z))
		})
		return nil
	})
	return err
}

//Draw draws the lane and the balls
func (w *Window) Draw(screen *ebiten.Image) {
	screen.Fill(w.background)
	w.drawLane(screen)
	for i, ball := range w.session.World.Balls {
		w.drawBall(screen, ball, w.balls[i])
	}
	if w.overlay {
		w.debugui.Draw(screen)
	}
}

//Layout keeps the configured resolution
func (w *Window) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return w.width, w.height
}
