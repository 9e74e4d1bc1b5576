package server

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/iov-one/lockswap/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
)

// Options are passed to the AppGenerator.
type Options struct {
	Home       string
	Logger     log.Logger
	Debug      bool
	Registerer prometheus.Registerer
}

// AppGenerator lets us lazily initialize app, using home dir
// and logger potentially initialized with other flags
type AppGenerator func(*Options) (abci.Application, error)

// Node is a running ABCI server together with its metrics endpoint.
type Node struct {
	abci    cmn.Service
	metrics *http.Server
	logger  log.Logger
}

// StartNode creates the application and starts serving it. Call Stop to
// release all resources.
func StartNode(gen AppGenerator, logger log.Logger, home string, conf Config) (*Node, error) {
	filter, err := logFilter(conf.LogLevel)
	if err != nil {
		return nil, err
	}
	logger = log.NewFilter(logger, filter)

	registry := prometheus.NewRegistry()
	app, err := gen(&Options{
		Home:       home,
		Logger:     logger,
		Debug:      conf.Debug,
		Registerer: registry,
	})
	if err != nil {
		return nil, errors.Wrap(err, "generate app")
	}

	svr, err := server.NewServer(conf.Bind, "socket", app)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "cannot create listener: %s", err)
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	logger.Info("Starting ABCI app", "bind", conf.Bind)
	if err := svr.Start(); err != nil {
		return nil, errors.Wrapf(errors.ErrHuman, "cannot start server: %s", err)
	}

	n := &Node{abci: svr, logger: logger}
	if conf.Metrics != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		n.metrics = &http.Server{Addr: conf.Metrics, Handler: mux}
		logger.Info("Serving metrics", "addr", conf.Metrics)
		go func() {
			if err := n.metrics.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server failed", "err", err)
			}
		}()
	}
	return n, nil
}

// Stop shuts down the ABCI and the metrics servers.
func (n *Node) Stop() error {
	if n.metrics != nil {
		if err := n.metrics.Close(); err != nil {
			n.logger.Error("Cannot close metrics server", "err", err)
		}
	}
	return n.abci.Stop()
}

// StartCmd reads the configuration, starts the node and blocks until the
// process receives an interrupt or terminate signal.
func StartCmd(gen AppGenerator, logger log.Logger, home string, args []string) error {
	conf, err := LoadConfig(home)
	if err != nil {
		return err
	}
	conf, err = parseFlags(conf, args)
	if err != nil {
		return err
	}

	node, err := StartNode(gen, logger, home, conf)
	if err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	s := <-sig
	logger.Info("Shutting down", "signal", s.String())
	return node.Stop()
}
