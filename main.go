package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JoshuaDoes/logger"
	"github.com/StickFightDev/ballsync/config"
	"github.com/StickFightDev/ballsync/game"
	"github.com/StickFightDev/ballsync/peer"
	"github.com/StickFightDev/ballsync/window"
	"github.com/alecthomas/kong"
)

var CLI struct {
	Master    bool    `help:"Be in control of the game (simulates the NPC ball)." short:"m"`
	Config    string  `help:"YAML configuration file." type:"existingfile" short:"c"`
	Port      int     `help:"UDP port to listen on." placeholder:"PORT"`
	Dest      string  `help:"Host of the other player." placeholder:"HOST"`
	DestPort  int     `help:"UDP port of the other player." placeholder:"PORT"`
	Headless  bool    `help:"Run without a window."`
	Verbosity int     `help:"Log verbosity, negative keeps the configured one." short:"v" default:"-1"`
	Seed      int64   `help:"Seed of the NPC spawn column, negative keeps the configured one." default:"-1"`
	SendRate  float64 `help:"Maximum NPC updates per second, 0 for every frame."`
	Status    string  `help:"Serve the link statistics as JSON over HTTP on this address." placeholder:"ADDR"`

	DumpConfig bool `help:"Write the effective configuration to standard output and exit."`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("ballsync"),
		kong.Description("two players, one falling ball, synced over UDP"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	if CLI.DumpConfig {
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
		return
	}

	log := logger.NewLogger("ballsync:"+cfg.Role, cfg.Verbosity)
	if err := run(cfg, log); err != nil {
		log.Fatal(err)
	}
}

//loadConfig merges the config file and command line flags
func loadConfig() (config.Config, error) {
	role := peer.RoleSlave
	if CLI.Master {
		role = peer.RoleMaster
	}

	cfg, err := config.Load(CLI.Config, role)
	if err != nil {
		return cfg, err
	}
	if CLI.Master && cfg.Role != peer.RoleMaster.String() {
		//The flag wins over the file, ports follow unless the file set them
		defaults := config.Default(peer.RoleMaster)
		slave := config.Default(peer.RoleSlave)
		cfg.Role = defaults.Role
		if cfg.Network.Port == slave.Network.Port {
			cfg.Network.Port = defaults.Network.Port
		}
		if cfg.Network.RemotePort == slave.Network.RemotePort {
			cfg.Network.RemotePort = defaults.Network.RemotePort
		}
	}

	if CLI.Port != 0 {
		cfg.Network.Port = CLI.Port
	}
	if CLI.Dest != "" {
		cfg.Network.RemoteHost = CLI.Dest
	}
	if CLI.DestPort != 0 {
		cfg.Network.RemotePort = CLI.DestPort
	}
	if CLI.SendRate != 0 {
		cfg.Network.SendRate = CLI.SendRate
	}
	if CLI.Status != "" {
		cfg.Network.StatusAddr = CLI.Status
	}
	if CLI.Headless {
		cfg.Headless = true
	}
	if CLI.Verbosity >= 0 {
		cfg.Verbosity = CLI.Verbosity
	}
	if CLI.Seed >= 0 {
		cfg.Game.Seed = CLI.Seed
	}
	return cfg, cfg.Validate()
}

func run(cfg config.Config, log *logger.Logger) error {
	peerCfg, err := cfg.PeerConfig()
	if err != nil {
		return err
	}

	if peerCfg.Role == peer.RoleMaster {
		log.Info("I am the MASTER, I am in control of the game.")
	} else {
		log.Info("I am the SLAVE, I want to join another game.")
	}
	log.Info("I am listening on port ", cfg.Network.Port)
	log.Info("and want to connect to ", peerCfg.RemoteAddr)

	link, err := peer.Open(peerCfg, log)
	if err != nil {
		return err
	}
	defer link.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	joinCtx := ctx
	if cfg.Network.JoinTimeout > 0 {
		var cancel context.CancelFunc
		joinCtx, cancel = context.WithTimeout(ctx, cfg.Network.JoinTimeout)
		defer cancel()
	}
	if err := link.Handshake(joinCtx); err != nil {
		return err
	}
	if err := link.Start(); err != nil {
		return err
	}
	if cfg.Network.StatusAddr != "" {
		go func() {
			if err := link.ServeStatus(ctx, cfg.Network.StatusAddr); err != nil {
				log.Error(err)
			}
		}()
	}

	session := game.NewSession(game.Config{
		Role:           peerCfg.Role,
		Speed:          cfg.Game.Speed,
		Seed:           cfg.Game.Seed,
		ControlRefresh: cfg.Game.ControlRefresh,
	}, link, log)

	if cfg.Headless {
		log.Info("Running headless, one frame every ", cfg.Game.FrameInterval)
		return session.RunHeadless(ctx, cfg.Game.FrameInterval)
	}
	return window.New(session, link, cfg.Window).Run()
}
