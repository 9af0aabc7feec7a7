package main

import (
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/quantfold/qlin/internal/kernels"
	"github.com/quantfold/qlin/internal/logger"
)

var (
	kernelPath string
	logLevel   string
	logFormat  string
)

func kernelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "kernel-path",
			Usage:       "\":\"-separated directories to search for kernel libraries",
			Destination: &kernelPath,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
	}
}

func newLogger() logger.Logger {
	return logger.ForFlags(logLevel, logFormat, os.Stderr)
}

// probeOptions turns the --kernel-path flag into probe options.
func probeOptions() kernels.Options {
	var opts kernels.Options
	if kernelPath != "" {
		for _, dir := range strings.Split(kernelPath, ":") {
			if dir = strings.TrimSpace(dir); dir != "" {
				opts.SearchDirs = append(opts.SearchDirs, dir)
			}
		}
	}
	return opts
}
