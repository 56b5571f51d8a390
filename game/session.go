package game

import (
	"context"
	"time"

	"github.com/JoshuaDoes/logger"
	"github.com/StickFightDev/ballsync/peer"
	"github.com/StickFightDev/ballsync/sim"
	"github.com/go-gl/mathgl/mgl32"
)

//Link is the part of the peer a session talks to.
type Link interface {
	Poll() []peer.Message
	SendNPC(pos mgl32.Vec3) error
	SendControls(bits byte) error
}

type handler func(*Session, peer.Message)

var handlers = map[peer.PacketType]handler{}

func addHandler(packetType peer.PacketType, h handler) {
	handlers[packetType] = h
}

func init() {
	addHandler(peer.PacketTypeHello, onHello)
	addHandler(peer.PacketTypeBye, onBye)
	addHandler(peer.PacketTypeAxisX, onAxis)
	addHandler(peer.PacketTypeAxisY, onAxis)
	addHandler(peer.PacketTypeAxisZ, onAxis)
	addHandler(peer.PacketTypeControls, onControls)
}

//Config tunes a Session.
type Config struct {
	Role           peer.Role
	Speed          float32
	Seed           int64
	ControlRefresh int //frames between repeated control sends, 0 to send on change only
}

//Session runs one instance of the game: the simulated world plus the link
//to the other instance.
type Session struct {
	Role  peer.Role
	World *sim.World

	log  *logger.Logger
	link Link

	refresh      int
	frame        uint64
	lastSent     sim.Controls
	sentControls bool
	remoteLeft   bool
}

//NewSession builds the world for the given role.
func NewSession(cfg Config, link Link, log *logger.Logger) *Session {
	return &Session{
		Role: cfg.Role,
		World: sim.NewWorld(sim.WorldConfig{
			Speed:         cfg.Speed,
			Seed:          cfg.Seed,
			Authoritative: cfg.Role == peer.RoleMaster,
		}),
		log:     log,
		link:    link,
		refresh: cfg.ControlRefresh,
	}
}

//LocalPlayer returns the index of the ball steered on this instance.
func (s *Session) LocalPlayer() int {
	if s.Role == peer.RoleMaster {
		return sim.PlayerMaster
	}
	return sim.PlayerSlave
}

//RemotePlayer returns the index of the ball steered on the other instance.
func (s *Session) RemotePlayer() int {
	if s.Role == peer.RoleMaster {
		return sim.PlayerSlave
	}
	return sim.PlayerMaster
}

//Frames returns how many frames ran.
func (s *Session) Frames() uint64 {
	return s.frame
}

//RemoteLeft reports whether the other instance said bye.
func (s *Session) RemoteLeft() bool {
	return s.remoteLeft
}

//Frame receives pending messages, applies the local controls, advances the
//world by tdif seconds and, on the master, publishes the NPC.
func (s *Session) Frame(tdif float32, local sim.Controls) error {
	s.Receive()

	if err := s.World.SetControls(s.LocalPlayer(), local); err != nil {
		return err
	}
	if err := s.sendControls(local); err != nil {
		return err
	}

	s.World.Step(tdif)
	s.frame++

	if s.Role == peer.RoleMaster {
		return s.link.SendNPC(s.World.NPC().Position())
	}
	return nil
}

//Receive dispatches every message the link has buffered.
func (s *Session) Receive() {
	for _, msg := range s.link.Poll() {
		h, ok := handlers[msg.Type]
		if !ok {
			s.log.Error("packet type ", msg.Type, " not implemented yet: ", msg)
			continue
		}
		h(s, msg)
	}
}

func (s *Session) sendControls(local sim.Controls) error {
	due := !s.sentControls || local != s.lastSent
	if !due && s.refresh > 0 && s.frame%uint64(s.refresh) == 0 {
		due = true
	}
	if !due {
		return nil
	}

	if err := s.link.SendControls(local.Bits()); err != nil {
		return err
	}
	if local != s.lastSent {
		s.log.Debug("Local controls changed to ", local)
	}
	s.lastSent = local
	s.sentControls = true
	return nil
}

//RunHeadless drives the session from a ticker until ctx is done. Local
//controls stay idle.
func (s *Session) RunHeadless(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			tdif := float32(now.Sub(last).Seconds())
			last = now
			if err := s.Frame(tdif, sim.Controls{}); err != nil {
				return err
			}
		}
	}
}

//onHello treats a hello after a bye as the other player coming back
func onHello(s *Session, msg peer.Message) {
	if !s.remoteLeft {
		s.log.Trace("Ignoring repeated hello")
		return
	}
	s.remoteLeft = false
	s.sentControls = false //the new instance has not seen our keys yet
	s.log.Info("The other player is back")
}

func onBye(s *Session, msg peer.Message) {
	s.remoteLeft = true
	s.World.Controls[s.RemotePlayer()] = sim.Controls{}
	s.log.Info("The other player left, their ball stops")
}

//onAxis mirrors the NPC; only the slave follows the master's positions.
func onAxis(s *Session, msg peer.Message) {
	if s.Role != peer.RoleSlave {
		return
	}
	if err := s.World.SetNPCAxis(sim.Axis(msg.Type.Axis()), msg.Value); err != nil {
		s.log.Error("unable to apply ", msg, ": ", err)
	}
}

func onControls(s *Session, msg peer.Message) {
	c := sim.ControlsFromBits(msg.Controls)
	if err := s.World.SetControls(s.RemotePlayer(), c); err != nil {
		s.log.Error("unable to apply ", msg, ": ", err)
	}
}
