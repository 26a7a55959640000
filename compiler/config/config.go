// Package config holds the settings of the optimization pipeline.
package config

import (
	"github.com/BurntSushi/toml"
	"tlog.app/go/errors"

	"github.com/orcc/xronos-sub001/compiler/df"
)

type (
	Config struct {
		Fixpoint Fixpoint `toml:"fixpoint"`
		Finalize Finalize `toml:"finalize"`
		Log      Log      `toml:"log"`
		Report   Report   `toml:"report"`
	}

	Fixpoint struct {
		MaxSweeps int  `toml:"max_sweeps"`
		Backward  bool `toml:"backward"`
	}

	// Finalize forces every terminal to its compacted width after convergence.
	Finalize struct {
		Enabled bool `toml:"enabled"`
	}

	Log struct {
		Verbosity string `toml:"verbosity"` // tlog topics
	}

	Report struct {
		Widths bool `toml:"widths"`
		Sweeps bool `toml:"sweeps"`
	}
)

var ErrUnknownKey = errors.New("unknown config key")

func Default() Config {
	return Config{
		Fixpoint: Fixpoint{
			MaxSweeps: df.DefaultMaxSweeps,
			Backward:  true,
		},
		Finalize: Finalize{
			Enabled: true,
		},
		Report: Report{
			Widths: true,
		},
	}
}

// Load reads a TOML file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(err, "decode %v", path)
	}

	if err = undecoded(meta); err != nil {
		return cfg, errors.Wrap(err, "%v", path)
	}

	return cfg, nil
}

// Parse is Load for config text.
func Parse(text string) (Config, error) {
	cfg := Default()

	meta, err := toml.Decode(text, &cfg)
	if err != nil {
		return cfg, errors.Wrap(err, "decode")
	}

	return cfg, undecoded(meta)
}

func undecoded(meta toml.MetaData) error {
	keys := meta.Undecoded()
	if len(keys) == 0 {
		return nil
	}

	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}

	return errors.Wrap(ErrUnknownKey, "%v", names)
}

func (c Config) Options() df.Options {
	return df.Options{
		MaxSweeps: c.Fixpoint.MaxSweeps,
		Backward:  c.Fixpoint.Backward,
	}
}
