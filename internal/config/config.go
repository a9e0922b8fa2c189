// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and projection settings.
type GraphicsConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	FOV        float32 `yaml:"fov"` // vertical field of view, degrees
	Near       float32 `yaml:"near"`
	Far        float32 `yaml:"far"`
}

// ViewerConfig holds playback settings.
type ViewerConfig struct {
	Model         string  `yaml:"model"`          // model opened when none is given on the command line
	PlaybackSpeed float64 `yaml:"playback_speed"` // animation time multiplier
	ShowFPS       bool    `yaml:"show_fps"`
	Fog           bool    `yaml:"fog"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FOV:        45,
			Near:       0.1,
			Far:        500,
		},
		Viewer: ViewerConfig{
			Model:         "",
			PlaybackSpeed: 1.0,
			ShowFPS:       true,
			Fog:           true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
