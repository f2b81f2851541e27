// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"flag"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	versionKey    = "version"
	configFileKey = "config-file"
	httpHostKey   = "http-host"
	httpPortKey   = "http-port"
	logLevelKey   = "log-level"
	metricsKey    = "metrics-path"
)

// params are the resolved settings of the binary.
type params struct {
	version     bool
	httpHost    string
	httpPort    uint16
	logLevel    string
	metricsPath string
}

func buildFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("feltvm", flag.ContinueOnError)

	fs.Bool(versionKey, false, "If true, prints the version and quits")
	fs.String(configFileKey, "", "Path to a config file (json, yaml or toml)")
	fs.String(httpHostKey, "127.0.0.1", "Address the JSON-RPC and metrics server listens on")
	fs.Uint(httpPortKey, 9650, "Port the JSON-RPC and metrics server listens on")
	fs.String(logLevelKey, "info", "Log level (crit, error, warn, info, debug)")
	fs.String(metricsKey, "/metrics", "HTTP path metrics are served under")

	return fs
}

// getViper returns the viper environment for the binary
func getViper(args []string) (*viper.Viper, error) {
	v := viper.New()

	fs := pflag.NewFlagSet("feltvm", pflag.ContinueOnError)
	fs.AddGoFlagSet(buildFlagSet())
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if path := v.GetString(configFileKey); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("couldn't read config file %s: %w", path, err)
		}
	}
	return v, nil
}

func getParams(args []string) (params, error) {
	v, err := getViper(args)
	if err != nil {
		return params{}, err
	}

	port := v.GetUint(httpPortKey)
	if port > 1<<16-1 {
		return params{}, fmt.Errorf("invalid %s %d", httpPortKey, port)
	}
	return params{
		version:     v.GetBool(versionKey),
		httpHost:    v.GetString(httpHostKey),
		httpPort:    uint16(port),
		logLevel:    v.GetString(logLevelKey),
		metricsPath: v.GetString(metricsKey),
	}, nil
}
