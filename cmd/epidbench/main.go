/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Command epidbench measures signing and verification time as a function of
// the size of the revocation list.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/IBM/epid/config"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	sizes := flag.String("rl", "", "comma-separated revocation list sizes, overrides the config file")
	chart := flag.String("chart", "", "write an HTML chart of the results to this file")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	logConfig := zap.NewProductionConfig()
	if *debug {
		logConfig = zap.NewDevelopmentConfig()
	}
	baseLogger, err := logConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed creating logger: %v\n", err)
		os.Exit(1)
	}
	defer baseLogger.Sync()
	logger := baseLogger.Sugar()

	conf, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed loading config: %v", err)
	}

	if *sizes != "" {
		conf.Bench.RevocationListSizes, err = parseSizes(*sizes)
		if err != nil {
			logger.Fatalf("Invalid -rl: %v", err)
		}
	}

	results, err := run(conf, logger)
	if err != nil {
		logger.Fatalf("Benchmark failed: %v", err)
	}

	for _, r := range results {
		fmt.Printf("revocation list of %5d entries: sign %v, verify %v, signature %d bytes\n",
			r.RevocationListSize, r.Sign, r.Verify, r.SignatureSize)
	}

	if *chart != "" {
		if err := renderChart(*chart, conf.Curve, results); err != nil {
			logger.Fatalf("Failed rendering chart: %v", err)
		}
		logger.Infof("Chart written to %s", *chart)
	}
}
