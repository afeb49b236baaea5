/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package config loads the settings of the EPID tools from YAML,
// with environment variables taking precedence over the file.
package config

import (
	"os"
	"strconv"

	"github.com/IBM/epid/algebra"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	EnvCurve   = "EPID_CURVE"
	EnvWorkers = "EPID_WORKERS"
)

// Config holds the curve and parallelism settings shared by every role,
// and the parameters of the benchmark.
type Config struct {
	Curve string `yaml:"curve"`
	// Workers bounds the goroutines used per revocation list, 0 means one per CPU.
	Workers int   `yaml:"workers"`
	Bench   Bench `yaml:"bench"`
}

type Bench struct {
	RevocationListSizes []int  `yaml:"revocationListSizes"`
	Message             string `yaml:"message"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Curve: algebra.DefaultCurve,
		Bench: Bench{
			RevocationListSizes: []int{0, 10, 100, 1000},
			Message:             "hello",
		},
	}
}

// Load reads the file at path on top of the defaults, then applies the environment.
// An empty path skips the file.
func Load(path string) (Config, error) {
	conf := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "failed reading config file %s", path)
		}

		if err := yaml.Unmarshal(raw, &conf); err != nil {
			return Config{}, errors.Wrapf(err, "failed parsing config file %s", path)
		}
	}

	if err := conf.ApplyEnv(); err != nil {
		return Config{}, err
	}

	if err := conf.Validate(); err != nil {
		return Config{}, err
	}

	return conf, nil
}

// ApplyEnv overrides the curve and worker count from EPID_CURVE and EPID_WORKERS.
func (conf *Config) ApplyEnv() error {
	if curve := os.Getenv(EnvCurve); curve != "" {
		conf.Curve = curve
	}

	if workers := os.Getenv(EnvWorkers); workers != "" {
		n, err := strconv.Atoi(workers)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvWorkers)
		}
		conf.Workers = n
	}

	return nil
}

func (conf Config) Validate() error {
	if _, err := algebra.CurveByName(conf.Curve); err != nil {
		return err
	}

	if conf.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", conf.Workers)
	}

	for _, n := range conf.Bench.RevocationListSizes {
		if n < 0 {
			return errors.Errorf("revocation list sizes must not be negative, got %d", n)
		}
	}

	return nil
}

// AlgebraCurve returns the configured curve.
func (conf Config) AlgebraCurve() (*algebra.Curve, error) {
	return algebra.CurveByName(conf.Curve)
}
