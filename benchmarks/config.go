package benchmarks

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/zeu5/graphenv/store"
	"github.com/zeu5/graphenv/types"
	"gopkg.in/yaml.v3"
)

// Config is the optional experiment file. Set values replace the
// defaults of the matching flags; flags given on the command line win.
type Config struct {
	Episodes int    `yaml:"episodes"`
	Horizon  int    `yaml:"horizon"`
	Runs     int    `yaml:"runs"`
	Save     string `yaml:"save"`
	Workers  int    `yaml:"workers"`
	Seed     uint64 `yaml:"seed"`

	Hallway struct {
		Size     int `yaml:"size"`
		MaxSteps int `yaml:"max_steps"`
	} `yaml:"hallway"`

	TSP struct {
		Nodes     int  `yaml:"nodes"`
		Neighbors int  `yaml:"neighbors"`
		NFP       bool `yaml:"nfp"`
	} `yaml:"tsp"`

	Recorder RecorderConfig `yaml:"recorder"`
}

type RecorderConfig struct {
	File          string `yaml:"file"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	Traces        bool   `yaml:"traces"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// flagValues maps flag names to the values set in the file
func (c *Config) flagValues() map[string]string {
	values := make(map[string]string)
	setInt := func(name string, v int) {
		if v != 0 {
			values[name] = strconv.Itoa(v)
		}
	}
	setBool := func(name string, v bool) {
		if v {
			values[name] = "true"
		}
	}
	setInt("episodes", c.Episodes)
	setInt("horizon", c.Horizon)
	setInt("runs", c.Runs)
	setInt("workers", c.Workers)
	if c.Save != "" {
		values["save"] = c.Save
	}
	if c.Seed != 0 {
		values["seed"] = strconv.FormatUint(c.Seed, 10)
	}
	setInt("size", c.Hallway.Size)
	setInt("max-steps", c.Hallway.MaxSteps)
	setInt("nodes", c.TSP.Nodes)
	setInt("neighbors", c.TSP.Neighbors)
	setBool("nfp", c.TSP.NFP)
	if c.Recorder.File != "" {
		values["record-file"] = c.Recorder.File
	}
	if c.Recorder.RedisAddr != "" {
		values["redis"] = c.Recorder.RedisAddr
	}
	setBool("record-traces", c.Recorder.Traces)
	return values
}

// Apply sets every flag of cmd that was not given explicitly and has a value in the file
func (c *Config) Apply(cmd *cobra.Command) error {
	values := c.flagValues()
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		v, ok := values[f.Name]
		if !ok || f.Changed || err != nil {
			return
		}
		if setErr := cmd.Flags().Set(f.Name, v); setErr != nil {
			err = fmt.Errorf("config value %s: %w", f.Name, setErr)
		}
	})
	return err
}

// recorderFlags are shared by the experiment subcommands
type recorderFlags struct {
	file         string
	redisAddr    string
	recordTraces bool
}

func (r *recorderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.file, "record-file", "", "Append episode summaries as json lines to this file")
	cmd.Flags().StringVar(&r.redisAddr, "redis", "", "Push episode summaries to the redis server at this address")
	cmd.Flags().BoolVar(&r.recordTraces, "record-traces", false, "Include the full trace in episode summaries")
}

// build returns the configured recorder, nil if none, and a function releasing it
func (r *recorderFlags) build() (types.Recorder, func() error) {
	switch {
	case r.redisAddr != "":
		password, db := "", 0
		if config != nil {
			password, db = config.Recorder.RedisPassword, config.Recorder.RedisDB
		}
		recorder := store.NewRedisRecorder(r.redisAddr, password, db)
		return recorder, recorder.Close
	case r.file != "":
		return store.NewFileRecorder(r.file), func() error { return nil }
	default:
		return nil, func() error { return nil }
	}
}
