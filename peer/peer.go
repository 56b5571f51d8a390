package peer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/JoshuaDoes/logger"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/time/rate"
)

const (
	maxBufferSize = 256 //Largest datagram we care about, everything we send is far smaller
	inboxSize     = 1024
)

var (
	//ErrClosed is returned when using a peer after Close
	ErrClosed = errors.New("peer: closed")
	//ErrNotJoined is returned when sending game data before the handshake completed
	ErrNotJoined = errors.New("peer: handshake not completed")
)

//Role decides which instance is in control of the NPC
type Role int

const (
	RoleMaster Role = iota //Simulates the NPC and sends its position
	RoleSlave              //Mirrors the NPC position it receives
)

func (r Role) String() string {
	switch r {
	case RoleMaster:
		return "master"
	case RoleSlave:
		return "slave"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

//ParseRole parses "master" or "slave"
func ParseRole(s string) (Role, error) {
	switch s {
	case "master":
		return RoleMaster, nil
	case "slave":
		return RoleSlave, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

//DefaultPorts returns the local and remote ports a role uses unless configured otherwise
func DefaultPorts(role Role) (local, remote int) {
	if role == RoleMaster {
		return 9898, 9897
	}
	return 9897, 9898
}

//Config holds the settings of a peer
type Config struct {
	Role          Role
	LocalAddr     string        //UDP address to listen on, e.g. ":9898"
	RemoteAddr    string        //UDP address of the other instance, e.g. "127.0.0.1:9897"
	SendRate      float64       //Maximum NPC updates per second, 0 for every frame
	HelloInterval time.Duration //How often hello is repeated while waiting for the other instance
	InboxSize     int           //Decoded messages buffered until polled, 1024 when zero
}

//Status holds peer statistics
type Status struct {
	Role     string `json:"role"`
	Local    string `json:"local"`
	Remote   string `json:"remote"`
	Joined   bool   `json:"joined"`
	Left     bool   `json:"left"`
	Sent     uint64 `json:"sent"`
	Received uint64 `json:"received"`
	Dropped  uint64 `json:"dropped"`
}

//Peer holds one end of the two-instance UDP link
type Peer struct {
	Role Role

	log     *logger.Logger
	sock    *net.UDPConn
	remote  *net.UDPAddr
	limiter *rate.Limiter
	hello   time.Duration

	inbox chan Message
	done  chan struct{}

	helloSent time.Time //When hello last went out
	heard     time.Time //When game data last came in

	mu       deadlock.RWMutex
	joined   bool
	left     bool
	closed   bool
	running  bool
	sent     uint64
	received uint64
	dropped  uint64
}

//Open binds the local UDP socket and resolves the other instance
func Open(cfg Config, log *logger.Logger) (*Peer, error) {
	localAddr, err := net.ResolveUDPAddr("udp4", cfg.LocalAddr)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve local address %s: %w", cfg.LocalAddr, err)
	}
	remoteAddr, err := net.ResolveUDPAddr("udp4", cfg.RemoteAddr)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve remote address %s: %w", cfg.RemoteAddr, err)
	}

	sock, err := net.ListenUDP("udp4", localAddr)
	if err != nil {
		return nil, fmt.Errorf("unable to listen on %s: %w", localAddr, err)
	}
	log.Trace("Listening on UDP address ", sock.LocalAddr())

	limit := rate.Inf
	if cfg.SendRate > 0 {
		limit = rate.Limit(cfg.SendRate)
	}
	hello := cfg.HelloInterval
	if hello <= 0 {
		hello = time.Second
	}
	size := cfg.InboxSize
	if size <= 0 {
		size = inboxSize
	}

	return &Peer{
		Role:    cfg.Role,
		log:     log,
		sock:    sock,
		remote:  remoteAddr,
		limiter: rate.NewLimiter(limit, 1),
		hello:   hello,
		inbox:   make(chan Message, size),
		done:    make(chan struct{}),
	}, nil
}

//LocalAddr returns the address the peer listens on
func (p *Peer) LocalAddr() *net.UDPAddr {
	return p.sock.LocalAddr().(*net.UDPAddr)
}

//SetRemote points the peer at another address
func (p *Peer) SetRemote(addr *net.UDPAddr) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.remote = addr
}

//Joined returns true once the handshake completed
func (p *Peer) Joined() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.joined
}

//Status returns the current peer statistics
func (p *Peer) Status() *Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return &Status{
		Role:     p.Role.String(),
		Local:    p.sock.LocalAddr().String(),
		Remote:   p.remote.String(),
		Joined:   p.joined,
		Left:     p.left,
		Sent:     p.sent,
		Received: p.received,
		Dropped:  p.dropped,
	}
}

//Handshake sends hello and blocks until the other instance says hello too, then says hello
//once more so an instance that started later completes as well
func (p *Peer) Handshake(ctx context.Context) error {
	if p.isClosed() {
		return ErrClosed
	}

	if p.Role == RoleMaster {
		p.log.Info("Waiting for another player (the slave) to join my game...")
	} else {
		p.log.Info("Waiting for another player (the master) in control of the game...")
	}

	buffer := make([]byte, maxBufferSize)
	for {
		if err := p.sayHello(); err != nil {
			return err
		}

		deadline := time.Now().Add(p.hello)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		if err := p.sock.SetReadDeadline(deadline); err != nil {
			return fmt.Errorf("unable to set read deadline: %w", err)
		}

		for {
			n, addr, err := p.sock.ReadFromUDP(buffer)
			if err != nil {
				if errors.Is(err, os.ErrDeadlineExceeded) {
					break
				}
				if isRefused(err) {
					continue
				}
				if p.isClosed() {
					return ErrClosed
				}
				return fmt.Errorf("unable to read handshake: %w", err)
			}

			p.count(&p.received)
			if !IsHello(buffer[:n]) {
				p.log.Trace("Ignoring ", n, " bytes from ", addr, " while waiting for hello")
				p.count(&p.dropped)
				continue
			}

			p.mu.Lock()
			p.joined = true
			p.left = false
			p.mu.Unlock()

			if p.Role == RoleMaster {
				p.log.Info("Another player (the slave) has joined my game!")
			} else {
				p.log.Info("I have joined another player's (the master) game!")
			}

			//Clear the deadline before handing the socket to the reader
			if err := p.sock.SetReadDeadline(time.Time{}); err != nil {
				return fmt.Errorf("unable to clear read deadline: %w", err)
			}
			return p.sayHello()
		}

		if err := ctx.Err(); err != nil {
			_ = p.sock.SetReadDeadline(time.Time{})
			return fmt.Errorf("handshake with %s: %w", p.remote, err)
		}
		p.log.Trace("No hello yet, saying hello again to ", p.remote)
	}
}

//Start spawns the goroutine that reads and decodes incoming datagrams
func (p *Peer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if !p.joined {
		return ErrNotJoined
	}
	if p.running {
		return nil
	}
	p.running = true

	p.log.Debug("Spawning goroutine to read incoming packets")
	go p.readPackets()
	return nil
}

//readPackets reads datagrams until the socket is closed
func (p *Peer) readPackets() {
	defer close(p.done)

	var decoder Decoder
	buffer := make([]byte, maxBufferSize)
	for {
		//Block until a datagram is read into the buffer
		n, addr, err := p.sock.ReadFromUDP(buffer)
		if err != nil {
			if p.isClosed() || errors.Is(err, net.ErrClosed) {
				return
			}
			if isRefused(err) {
				continue
			}
			p.log.Error(addr, ": ", err)
			continue
		}
		p.count(&p.received)

		msg, ok, dropped := decoder.Feed(buffer[:n])
		if dropped {
			p.log.Trace("Dropped unknown datagram from ", addr, ": ", buffer[:n])
			p.count(&p.dropped)
			continue
		}
		if !ok {
			continue
		}

		switch msg.Type {
		case PacketTypeBye:
			p.log.Info("The other player has left the game")
			p.mu.Lock()
			p.left = true
			p.mu.Unlock()
		case PacketTypeHello:
			p.answerHello(addr)
		default:
			p.mu.Lock()
			p.heard = time.Now()
			p.mu.Unlock()
		}

		select {
		case p.inbox <- msg:
		default:
			p.count(&p.dropped)
		}
	}
}

//Poll returns every message received since the last call without blocking
func (p *Peer) Poll() []Message {
	var msgs []Message
	for {
		select {
		case msg := <-p.inbox:
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

//SendNPC sends the position of the NPC as three tagged coordinates, unless the send rate is exhausted
func (p *Peer) SendNPC(pos mgl32.Vec3) error {
	if err := p.ready(); err != nil {
		return err
	}
	if !p.limiter.Allow() {
		return nil
	}

	axes := []PacketType{PacketTypeAxisX, PacketTypeAxisY, PacketTypeAxisZ}
	for i, axis := range axes {
		datagrams, err := EncodeAxis(axis, pos[i])
		if err != nil {
			return err
		}
		if err := p.sendAll(datagrams); err != nil {
			return err
		}
	}
	return nil
}

//SendControls sends the packed key state of the local player
func (p *Peer) SendControls(bits byte) error {
	if err := p.ready(); err != nil {
		return err
	}
	return p.sendAll(EncodeControls(bits))
}

//Close says bye, stops the reader and closes the socket
func (p *Peer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	joined, running := p.joined, p.running
	p.mu.Unlock()

	if joined {
		if err := p.send(EncodeBye()); err != nil {
			p.log.Warn("Unable to say bye: ", err)
		}
	}

	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.log.Info("Closing peer!")
	err := p.sock.Close()
	if running {
		<-p.done
	}
	return err
}

//answerHello says hello back to an instance that is still waiting for one: it either left and
//came back, or it missed the last hello of our handshake. Answers are spaced by the hello interval
//so two joined peers cannot keep bouncing hellos.
func (p *Peer) answerHello(addr *net.UDPAddr) {
	p.mu.Lock()
	waiting := p.left || p.heard.Before(p.helloSent)
	due := time.Since(p.helloSent) >= p.hello
	rejoined := waiting && due && p.left
	if rejoined {
		p.left = false
	}
	p.mu.Unlock()

	if !waiting || !due {
		return
	}
	if rejoined {
		p.log.Info("The other player is back from ", addr)
	}
	if err := p.sayHello(); err != nil {
		p.log.Warn("Unable to answer hello: ", err)
	}
}

func (p *Peer) sayHello() error {
	if err := p.send(EncodeHello()); err != nil {
		return err
	}
	p.mu.Lock()
	p.helloSent = time.Now()
	p.mu.Unlock()
	return nil
}

func (p *Peer) ready() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if !p.joined {
		return ErrNotJoined
	}
	return nil
}

func (p *Peer) isClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

func (p *Peer) count(counter *uint64) {
	p.mu.Lock()
	*counter++
	p.mu.Unlock()
}

func (p *Peer) sendAll(datagrams [][]byte) error {
	for _, datagram := range datagrams {
		if err := p.send(datagram); err != nil {
			return err
		}
	}
	return nil
}

//send writes a single datagram to the other instance
func (p *Peer) send(datagram []byte) error {
	p.mu.RLock()
	remote := p.remote
	p.mu.RUnlock()

	if _, err := p.sock.WriteToUDP(datagram, remote); err != nil {
		//Nobody listening yet shows up as a refused socket on some systems, the handshake retries
		if isRefused(err) {
			p.log.Trace("Nobody listening on ", remote, " yet")
			return nil
		}
		return fmt.Errorf("unable to send to %s: %w", remote, err)
	}
	p.count(&p.sent)
	return nil
}

func isRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}

//JoinHostPort formats a UDP address from a host and port
func JoinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
