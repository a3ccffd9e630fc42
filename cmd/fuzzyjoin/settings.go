package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"

	"github.com/hupe1980/fuzzyjoin/config"
	"github.com/hupe1980/fuzzyjoin/model"
	"github.com/hupe1980/fuzzyjoin/registry"
)

// envPrefix prefixes every environment variable read by the CLI.
const envPrefix = "FUZZYJOIN_"

type JoinSettings struct {
	LeftID     string        `toml:"left_id"`
	RightID    string        `toml:"right_id"`
	LeftField  string        `toml:"left_field"`
	RightField string        `toml:"right_field"`
	Threshold  float64       `toml:"threshold"`
	NGram      int           `toml:"ngram"`
	Numbers    string        `toml:"numbers"`
	Collate    string        `toml:"collate"`
	Exclude    string        `toml:"exclude"`
	Distance   string        `toml:"distance"`
	Workers    int           `toml:"workers"`
	Progress   string        `toml:"progress"`
	StrictIDs  bool          `toml:"strict_ids"`
	Plugins    []string      `toml:"plugins"`
}

type OutputSettings struct {
	Path      string `toml:"path"`
	Multiples bool   `toml:"multiples"`
	Metrics   string `toml:"metrics"`
	Yes       bool   `toml:"yes"`
	Trace     bool   `toml:"trace"`
	Codec     string `toml:"codec"`
}

type LogSettings struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Settings is the merged CLI configuration. Sources are applied in the order
// defaults, TOML file, environment, flags.
type Settings struct {
	Join   JoinSettings   `toml:"join"`
	Output OutputSettings `toml:"output"`
	Log    LogSettings    `toml:"log"`
}

func defaultSettings() Settings {
	return Settings{
		Join: JoinSettings{
			Threshold: config.DefaultThreshold,
			NGram:     config.DefaultNGramSize,
			Numbers:   config.NumbersNone.String(),
			Collate:   registry.CollateDefault,
			Exclude:   registry.ExcludeNone,
			Distance:  registry.DistanceLevenshtein,
			Workers:   1,
		},
		Output: OutputSettings{
			Path:  "matches.csv",
			Codec: "go-json",
		},
		Log: LogSettings{
			Format: "text",
			Level:  "info",
		},
	}
}

// loadFile decodes a TOML file over s. Keys absent from the file keep their
// current value.
func (s *Settings) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if err := toml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("failed to parse TOML: %w", err)
	}

	return nil
}

// loadEnv applies FUZZYJOIN_* variables found by lookup.
func (s *Settings) loadEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"LEFT_ID":     &s.Join.LeftID,
		"RIGHT_ID":    &s.Join.RightID,
		"LEFT_FIELD":  &s.Join.LeftField,
		"RIGHT_FIELD": &s.Join.RightField,
		"NUMBERS":     &s.Join.Numbers,
		"COLLATE":     &s.Join.Collate,
		"EXCLUDE":     &s.Join.Exclude,
		"DISTANCE":    &s.Join.Distance,
		"OUTPUT":      &s.Output.Path,
		"METRICS":     &s.Output.Metrics,
		"CODEC":       &s.Output.Codec,
		"LOG_FORMAT":  &s.Log.Format,
		"LOG_LEVEL":   &s.Log.Level,
	}
	for key, dst := range strs {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = cast.ToString(v)
		}
	}

	if v, ok := lookup(envPrefix + "THRESHOLD"); ok {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return envError("THRESHOLD", err)
		}
		s.Join.Threshold = f
	}

	ints := map[string]*int{
		"NGRAM":   &s.Join.NGram,
		"WORKERS": &s.Join.Workers,
	}
	for key, dst := range ints {
		if v, ok := lookup(envPrefix + key); ok {
			n, err := cast.ToIntE(v)
			if err != nil {
				return envError(key, err)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"STRICT_IDS": &s.Join.StrictIDs,
		"MULTIPLES":  &s.Output.Multiples,
		"YES":        &s.Output.Yes,
		"TRACE":      &s.Output.Trace,
	}
	for key, dst := range bools {
		if v, ok := lookup(envPrefix + key); ok {
			b, err := cast.ToBoolE(v)
			if err != nil {
				return envError(key, err)
			}
			*dst = b
		}
	}

	if v, ok := lookup(envPrefix + "PROGRESS"); ok {
		if _, err := cast.ToDurationE(v); err != nil {
			return envError("PROGRESS", err)
		}
		s.Join.Progress = v
	}

	if v, ok := lookup(envPrefix + "PLUGINS"); ok && v != "" {
		s.Join.Plugins = strings.Split(v, string(os.PathListSeparator))
	}

	return nil
}

func envError(key string, err error) error {
	return fmt.Errorf("invalid %s%s: %w", envPrefix, key, err)
}

// configOptions converts the join settings into config options.
func (s *Settings) configOptions() ([]config.Option, error) {
	opts := []config.Option{
		config.IDs(s.Join.LeftID, s.Join.RightID),
		config.Fields(s.Join.LeftField, s.Join.RightField),
		config.WithThreshold(s.Join.Threshold),
		config.WithNGramSize(s.Join.NGram),
		config.WithWorkers(s.Join.Workers),
		config.WithStrictIDs(s.Join.StrictIDs),
	}

	// Several policies are passed on so that config.New reports the conflict.
	for _, name := range strings.Split(s.Join.Numbers, ",") {
		p, err := config.ParseNumberPolicy(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		opts = append(opts, config.WithNumbers(p))
	}

	if s.Join.Progress != "" {
		d, err := cast.ToDurationE(s.Join.Progress)
		if err != nil {
			return nil, &model.ConfigError{Field: "progress", Reason: err.Error()}
		}
		if d > 0 {
			opts = append(opts, config.WithProgress(true, d))
		}
	}

	named, err := registry.Resolve(s.Join.Collate, s.Join.Exclude, s.Join.Distance, s.Join.LeftID, s.Join.RightID)
	if err != nil {
		return nil, err
	}

	return append(opts, named...), nil
}

// pair splits "left,right". A single value is used for both sides.
func pair(v string) (string, string, error) {
	left, right, ok := strings.Cut(v, ",")
	if !ok {
		return v, v, nil
	}
	left, right = strings.TrimSpace(left), strings.TrimSpace(right)
	if left == "" || right == "" || strings.Contains(right, ",") {
		return "", "", fmt.Errorf("want <left>,<right>, got %q", v)
	}
	return left, right, nil
}
