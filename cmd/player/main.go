package main

import (
	"context"
	"os"
	"time"

	"github.com/framecast/player/pkg/capture"
	"github.com/framecast/player/pkg/config"
	"github.com/framecast/player/pkg/engine"
	"github.com/framecast/player/pkg/logger"
	"github.com/framecast/player/pkg/monitoring"
	"github.com/framecast/player/pkg/native"
	"github.com/framecast/player/pkg/native/canvas"
	"github.com/framecast/player/pkg/native/sdl"
	pos "github.com/framecast/player/pkg/os"
	"github.com/framecast/player/pkg/remote"
	"github.com/framecast/player/pkg/scene"
	"github.com/framecast/player/pkg/service"
	"github.com/framecast/player/pkg/thread"
	"github.com/framecast/player/pkg/vsync"
	"github.com/gogpu/gg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

var Version = "?"

const (
	initTimeout     = 10 * time.Second
	shutdownTimeout = 5 * time.Second
	eventPoll       = 10 * time.Millisecond
)

func main() { thread.Wrap(run) }

func run() {
	conf, err := loadConfig(os.Args[1:])
	if err != nil {
		logger.Default().Fatal().Err(err).Msg("config")
	}

	log := logger.New(logger.Options{Debug: conf.Player.Debug, Tag: conf.Player.Tag, Json: conf.Player.LogJson})
	log.Info().Msgf("version %v", Version)
	log.Debug().Msgf("config: %+v", conf)

	if err := play(conf, log); err != nil {
		log.Error().Err(err).Msg("player")
		os.Exit(1)
	}
}

// loadConfig reads the config dir from -c first,
// so the rest of the flags can override the file values.
func loadConfig(args []string) (conf config.PlayerConfig, err error) {
	pre := pflag.NewFlagSet("config", pflag.ContinueOnError)
	pre.ParseErrorsWhitelist.UnknownFlags = true
	pre.Usage = func() {}
	dir := pre.StringP("conf", "c", "", "Config dir")
	_ = pre.Parse(args)

	if conf, err = config.NewPlayerConfig(*dir); err != nil {
		return
	}
	fs := pflag.NewFlagSet("player", pflag.ExitOnError)
	fs.StringP("conf", "c", *dir, "Config dir")
	conf.ParseFlags(fs)
	if err = fs.Parse(args); err != nil {
		return
	}
	err = conf.Validate()
	return
}

func play(conf config.PlayerConfig, log *logger.Logger) error {
	nconf, err := nativeConfig(conf)
	if err != nil {
		return err
	}

	var recorder *capture.Recorder
	if conf.Capture.Enabled {
		recorder, err = capture.New(capture.Options{
			Dir:              conf.Capture.Folder,
			Every:            conf.Capture.Every,
			Scale:            conf.Capture.Scale,
			Label:            conf.Capture.Label,
			CompressionLevel: conf.Capture.Compression,
		}, log)
		if err != nil {
			return err
		}
		nconf.Capture = recorder.Capture
	}

	fetcher, err := scene.NewFetcher(conf.Scene.CacheDir, conf.Scene.LockFile, log)
	if err != nil {
		return err
	}
	defer func() { _ = fetcher.Close() }()

	opts := []engine.Option{
		engine.WithLogger(log),
		engine.WithConfig(nconf),
		engine.WithFrameSource(vsync.NewTicker(conf.Engine.RefreshRate)),
		engine.WithLooping(conf.Player.Looping),
		engine.WithPlayWhenReady(conf.Player.PlayWhenReady),
		engine.WithReleaseTimeout(conf.Engine.ReleaseTimeout),
		engine.WithCallback(reporter{log: log}),
	}
	if conf.Monitoring.MetricEnabled {
		metrics, err := engine.NewMetrics(prometheus.DefaultRegisterer, conf.Player.Tag)
		if err != nil {
			return err
		}
		opts = append(opts, engine.WithMetrics(metrics))
	}
	player := engine.New(func() native.Context { return canvas.New(log) }, opts...)

	load := func(ctx context.Context, src string) (scene.Scene, error) {
		m, err := fetcher.Load(ctx, src)
		if err != nil {
			return nil, err
		}
		return m, nil
	}

	services := service.Group{}
	if conf.Monitoring.IsEnabled() {
		mon, err := monitoring.New(conf.Monitoring, nil, log)
		if err != nil {
			return err
		}
		services.Add(mon)
	}
	if conf.Remote.Enabled {
		control := remote.NewControl(player, load, log)
		player.AddCallback(control)
		srv, err := remote.New(conf.Remote, control)
		if err != nil {
			return err
		}
		services.Add(srv)
	}
	services.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err = start(ctx, player, conf, log); err != nil {
		shutdown(player, &services, recorder, log)
		return err
	}

	if path := conf.Scene.Path; path != "" {
		s, err := load(ctx, path)
		if err != nil {
			log.Error().Err(err).Msgf("scene %v", path)
		} else {
			player.SetScene(s)
		}
		if conf.Scene.Watch && !scene.IsRemote(path) {
			err = scene.Watch(ctx, path, conf.Scene.Settle, func() {
				s, err := load(ctx, path)
				if err != nil {
					log.Error().Err(err).Msgf("scene reload %v", path)
					return
				}
				log.Info().Msgf("Scene %v has changed", path)
				player.SetScene(s)
			}, log)
			if err != nil {
				log.Warn().Err(err).Msg("scene watch")
			}
		}
	}

	quit := make(chan struct{}, 1)
	if !conf.Player.Offscreen {
		go pollWindow(ctx, player, quit)
	}

	select {
	case <-pos.ExpectTermination():
		log.Info().Msg("Terminated")
	case <-quit:
		log.Info().Msg("Window closed")
	case <-player.Done():
	}
	cancel()
	shutdown(player, &services, recorder, log)
	return nil
}

func nativeConfig(conf config.PlayerConfig) (native.Config, error) {
	backend, err := native.ParseBackend(conf.Engine.Backend)
	if err != nil {
		return native.Config{}, err
	}
	c := gg.Hex(conf.Engine.ClearColor)
	return native.Config{
		Backend:      backend,
		Width:        conf.Engine.Width,
		Height:       conf.Engine.Height,
		Samples:      conf.Engine.Samples,
		SwapInterval: conf.Engine.SwapInterval,
		ClearColor:   [4]float64{c.R, c.G, c.B, c.A},
		Debug:        conf.Player.Debug,
	}, nil
}

func start(ctx context.Context, player *engine.Engine, conf config.PlayerConfig, log *logger.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()
	if conf.Player.Offscreen {
		return player.InitOffscreen(ctx, conf.Engine.Width, conf.Engine.Height)
	}
	if err := sdl.Init(); err != nil {
		return err
	}
	return player.InitWithSurface(ctx, sdl.Surface{
		Title: conf.Player.Title,
		W:     conf.Engine.Width,
		H:     conf.Engine.Height,
		Log:   log,
	})
}

// pollWindow forwards window events to the player.
func pollWindow(ctx context.Context, player *engine.Engine, quit chan<- struct{}) {
	t := time.NewTicker(eventPoll)
	defer t.Stop()
	exit := func() {
		select {
		case quit <- struct{}{}:
		default:
		}
	}
	in := sdl.Input{
		Resize: player.Resize,
		Key: func(name string) {
			switch name {
			case "Space":
				if player.State() == engine.StateStarted {
					player.Pause()
				} else {
					player.Play()
				}
			case "Right":
				player.Step(1)
			case "Left":
				player.Step(-1)
			case "Home":
				player.Seek(0)
			case "S":
				player.Stop()
			case "Escape", "Q":
				exit()
			}
		},
		Quit: exit,
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			sdl.PollEvents(in)
		}
	}
}

func shutdown(player *engine.Engine, services *service.Group, recorder *capture.Recorder, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := services.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("services")
	}
	player.Release(true)
	player.Dispose()
	<-player.Done()
	if recorder != nil {
		if err := recorder.Close(); err != nil {
			log.Error().Err(err).Msg("capture")
		}
		log.Info().Msgf("Captured %v frames", recorder.Frames())
	}
	sdl.Quit()
}
