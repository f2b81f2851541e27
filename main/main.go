// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	log "github.com/inconshreveable/log15"

	"github.com/tanim0la/cairo-tutorial/feltvm"
)

func main() {
	p, err := getParams(os.Args[1:])
	if err != nil {
		fmt.Printf("couldn't get config: %s\n", err)
		os.Exit(1)
	}
	// Print version and exit
	if p.version {
		fmt.Printf("%s@%s\n", feltvm.Name, feltvm.Version)
		os.Exit(0)
	}

	lvl, err := log.LvlFromString(p.logLevel)
	if err != nil {
		fmt.Printf("couldn't parse log level: %s\n", err)
		os.Exit(1)
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(os.Stderr, log.TerminalFormat())))

	handler, err := newHandler(p, prometheus.NewRegistry())
	if err != nil {
		log.Error("couldn't create handler", "err", err)
		os.Exit(1)
	}

	addr := net.JoinHostPort(p.httpHost, strconv.Itoa(int(p.httpPort)))
	log.Info("serving", "addr", addr, "service", feltvm.Name, "metrics", p.metricsPath)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Error("serve returned an error", "err", err)
		os.Exit(1)
	}
}

func newHandler(p params, registry *prometheus.Registry) (http.Handler, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: feltvm.Name,
		Name:      "rpc_requests",
		Help:      "Number of static service requests by response code",
	}, []string{"code"})
	if err := registry.Register(requests); err != nil {
		return nil, err
	}

	static, err := feltvm.CreateStaticHandler()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/", promhttp.InstrumentHandlerCounter(requests, static))
	mux.Handle(p.metricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return mux, nil
}
