package config

import (
	"fmt"
	"time"

	"github.com/framecast/player/pkg/native"
	"github.com/spf13/pflag"
)

type PlayerConfig struct {
	Player     Player
	Engine     Engine
	Scene      Scene
	Capture    Capture
	Remote     Remote
	Monitoring Monitoring
}

type Player struct {
	Debug bool
	// Tag is printed in console logs.
	Tag string `default:"player"`
	// LogJson prints raw JSON logs.
	LogJson       bool
	Looping       bool
	PlayWhenReady bool
	Offscreen     bool
	Title         string `default:"framecast"`
}

type Engine struct {
	Backend    string `default:"auto"`
	Width      int    `default:"640"`
	Height     int    `default:"360"`
	ClearColor string `default:"#000000"`
	// SwapInterval of -1 keeps the platform default.
	SwapInterval   int `default:"1"`
	Samples        int
	RefreshRate    float64       `default:"60"`
	ReleaseTimeout time.Duration `default:"1s"`
}

type Scene struct {
	Path string
	// Watch reloads a local scene file on change.
	Watch    bool
	Settle   time.Duration `default:"200ms"`
	CacheDir string        `default:"{home}/.framecast/scenes"`
	LockFile string
}

type Capture struct {
	Enabled     bool
	Folder      string `default:"capture"`
	Every       int    `default:"1"`
	Scale       float64
	Label       bool
	Compression int
}

type Remote struct {
	Enabled bool
	Address string `default:"localhost:9100"`
	Path    string `default:"/ws"`
	Https   bool
	Tls     struct {
		Cert   string
		Key    string
		Domain string
		Cache  string `default:"{home}/.framecast/certs"`
	}
}

type Monitoring struct {
	Port             int
	URLPrefix        string
	MetricEnabled    bool `json:"metric_enabled"`
	ProfilingEnabled bool `json:"profiling_enabled"`
}

func (c *Monitoring) IsEnabled() bool { return c.MetricEnabled || c.ProfilingEnabled }

// NewPlayerConfig loads and checks the config from the dir path.
func NewPlayerConfig(path string) (conf PlayerConfig, err error) {
	if err = LoadConfig(&conf, path); err != nil {
		return
	}
	err = conf.Validate()
	return
}

// ParseFlags updates config values from passed runtime flags.
// Flags default to the current config values.
// Don't forget to call fs.Parse().
func (c *PlayerConfig) ParseFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.Player.Debug, "debug", "d", c.Player.Debug, "Print debug logs")
	fs.BoolVar(&c.Player.Offscreen, "offscreen", c.Player.Offscreen, "Render without a window")
	fs.BoolVar(&c.Player.Looping, "loop", c.Player.Looping, "Loop the scene")
	fs.BoolVar(&c.Player.PlayWhenReady, "play", c.Player.PlayWhenReady, "Play the scene as soon as it is loaded")
	fs.StringVar(&c.Scene.Path, "scene", c.Scene.Path, "Scene file path or URL")
	fs.BoolVar(&c.Scene.Watch, "watch", c.Scene.Watch, "Reload the scene file on change")
	fs.IntVar(&c.Engine.Width, "width", c.Engine.Width, "Output width")
	fs.IntVar(&c.Engine.Height, "height", c.Engine.Height, "Output height")
	fs.StringVar(&c.Engine.Backend, "backend", c.Engine.Backend, "Rendering backend")
	fs.BoolVar(&c.Capture.Enabled, "capture", c.Capture.Enabled, "Save frames as PNG files")
	fs.StringVar(&c.Capture.Folder, "capture.folder", c.Capture.Folder, "Captured frames folder")
	fs.BoolVar(&c.Remote.Enabled, "remote", c.Remote.Enabled, "Enable the remote control server")
	fs.StringVar(&c.Remote.Address, "remote.address", c.Remote.Address, "Remote control server address (host:port)")
	fs.IntVar(&c.Monitoring.Port, "monitoring.port", c.Monitoring.Port, "Monitoring server port")
}

func (c *PlayerConfig) Validate() error {
	if _, err := native.ParseBackend(c.Engine.Backend); err != nil {
		return err
	}
	if c.Engine.Width <= 0 || c.Engine.Height <= 0 {
		return fmt.Errorf("bad output size %vx%v", c.Engine.Width, c.Engine.Height)
	}
	if c.Engine.RefreshRate <= 0 {
		return fmt.Errorf("bad refresh rate %v", c.Engine.RefreshRate)
	}
	if c.Capture.Every < 1 {
		c.Capture.Every = 1
	}
	return nil
}
