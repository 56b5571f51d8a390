package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/StickFightDev/ballsync/peer"
	"github.com/StickFightDev/ballsync/sim"
	"gopkg.in/yaml.v3"
)

//ErrInvalidRole is returned for roles other than master and slave
var ErrInvalidRole = errors.New("role must be master or slave")

//Color is an RGB color written as "#rrggbb" in config files.
type Color struct {
	R, G, B uint8
}

//RGBA returns the opaque color for drawing
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

//String returns the color as "#rrggbb"
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

//MarshalYAML writes the color as "#rrggbb"
func (c Color) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

//UnmarshalYAML reads a "#rrggbb" color
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

//ParseColor parses "#rrggbb".
func ParseColor(s string) (Color, error) {
	var c Color
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("invalid color %q, want #rrggbb", s)
	}
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

//Network holds the settings of the UDP link and the status listener
type Network struct {
	Port          int           `yaml:"port"`
	RemoteHost    string        `yaml:"remoteHost"`
	RemotePort    int           `yaml:"remotePort"`
	SendRate      float64       `yaml:"sendRate"`
	HelloInterval time.Duration `yaml:"helloInterval"`
	JoinTimeout   time.Duration `yaml:"joinTimeout"`
	StatusAddr    string        `yaml:"statusAddr"`
}

//Window holds the size, camera and colors of the game window
type Window struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	FieldOfView float32 `yaml:"fieldOfView"`
	Background  Color   `yaml:"background"`
	Lane        Color   `yaml:"lane"`
	Balls       []Color `yaml:"balls"`
}

//Game holds the simulation settings
type Game struct {
	Speed          float32       `yaml:"speed"`
	Seed           int64         `yaml:"seed"`
	ControlRefresh int           `yaml:"controlRefresh"`
	FrameInterval  time.Duration `yaml:"frameInterval"`
}

//Config holds everything an instance needs to run
type Config struct {
	Role      string  `yaml:"role"`
	Verbosity int     `yaml:"verbosity"`
	Headless  bool    `yaml:"headless"`
	Network   Network `yaml:"network"`
	Window    Window  `yaml:"window"`
	Game      Game    `yaml:"game"`
}

//Default returns the configuration of the given role. Ports depend on the
//role, everything else is shared.
func Default(role peer.Role) Config {
	local, remote := peer.DefaultPorts(role)
	return Config{
		Role:      role.String(),
		Verbosity: 2,
		Network: Network{
			Port:          local,
			RemoteHost:    "127.0.0.1",
			RemotePort:    remote,
			HelloInterval: time.Second,
		},
		Window: Window{
			Width:       512,
			Height:      512,
			FieldOfView: 90,
			Background:  Color{0x99, 0x99, 0xff},
			Lane:        Color{0x55, 0x55, 0x88},
			Balls: []Color{
				{0xee, 0x44, 0x44},
				{0x44, 0xcc, 0x44},
				{0xff, 0xff, 0xff},
			},
		},
		Game: Game{
			Speed:          sim.PlayerSpeed,
			Seed:           sim.DefaultSeed,
			ControlRefresh: 30,
			FrameInterval:  time.Second / 60,
		},
	}
}

//Load reads a YAML file on top of the defaults of the given role. An empty
//path returns the defaults. Ports follow the role chosen in the file unless
//the file sets them.
func Load(path string, role peer.Role) (Config, error) {
	cfg := Default(role)
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("unable to read config: %w", err)
	}

	var probe struct {
		Role string `yaml:"role"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return cfg, fmt.Errorf("unable to parse %s: %w", path, err)
	}
	if probe.Role != "" {
		fileRole, err := peer.ParseRole(probe.Role)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", path, ErrInvalidRole)
		}
		cfg = Default(fileRole)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unable to parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

//PeerRole returns the parsed role.
func (c Config) PeerRole() (peer.Role, error) {
	role, err := peer.ParseRole(c.Role)
	if err != nil {
		return role, ErrInvalidRole
	}
	return role, nil
}

//Validate checks the configuration for values that cannot work.
func (c Config) Validate() error {
	if _, err := c.PeerRole(); err != nil {
		return err
	}
	if c.Network.Port < 0 || c.Network.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Network.Port)
	}
	if c.Network.RemotePort <= 0 || c.Network.RemotePort > 65535 {
		return fmt.Errorf("invalid remote port %d", c.Network.RemotePort)
	}
	if c.Network.RemoteHost == "" {
		return errors.New("remote host is empty")
	}
	if c.Network.SendRate < 0 {
		return fmt.Errorf("invalid send rate %v", c.Network.SendRate)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if len(c.Window.Balls) != 3 {
		return fmt.Errorf("need 3 ball colors, got %d", len(c.Window.Balls))
	}
	if c.Game.Speed <= 0 {
		return fmt.Errorf("invalid speed %v", c.Game.Speed)
	}
	if c.Game.ControlRefresh < 0 {
		return fmt.Errorf("invalid control refresh %d", c.Game.ControlRefresh)
	}
	if c.Game.FrameInterval <= 0 {
		return fmt.Errorf("invalid frame interval %v", c.Game.FrameInterval)
	}
	return nil
}

//PeerConfig returns the settings of the UDP link.
func (c Config) PeerConfig() (peer.Config, error) {
	role, err := c.PeerRole()
	if err != nil {
		return peer.Config{}, err
	}
	return peer.Config{
		Role:          role,
		LocalAddr:     peer.JoinHostPort("", c.Network.Port),
		RemoteAddr:    peer.JoinHostPort(c.Network.RemoteHost, c.Network.RemotePort),
		SendRate:      c.Network.SendRate,
		HelloInterval: c.Network.HelloInterval,
	}, nil
}

//Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
