package server

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	port, err := cmn.GetFreePort()
	require.NoError(t, err)
	return fmt.Sprintf("localhost:%d", port)
}

func TestStartNode(t *testing.T) {
	var got *Options
	gen := func(opts *Options) (abci.Application, error) {
		got = opts
		counter := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lockswap_test_started",
			Help: "Test counter.",
		})
		if err := opts.Registerer.Register(counter); err != nil {
			return nil, err
		}
		counter.Inc()
		return abci.NewBaseApplication(), nil
	}

	metrics := freeAddr(t)
	conf := Config{
		Bind:     "tcp://" + freeAddr(t),
		Metrics:  metrics,
		LogLevel: "none",
		Debug:    true,
	}
	node, err := StartNode(gen, log.NewNopLogger(), "/tmp/lockswap-home", conf)
	require.NoError(t, err)
	defer node.Stop()

	require.NotNil(t, got)
	assert.Equal(t, "/tmp/lockswap-home", got.Home)
	assert.True(t, got.Debug)

	var body []byte
	for i := 0; i < 50; i++ {
		resp, err := http.Get("http://" + metrics + "/metrics")
		if err != nil {
			time.Sleep(20 * time.Millisecond)
			continue
		}
		body, err = ioutil.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		break
	}
	assert.Contains(t, string(body), "lockswap_test_started 1")
}

func TestStartNodeInvalidLogLevel(t *testing.T) {
	gen := func(*Options) (abci.Application, error) {
		t.Fatal("application must not be created")
		return nil, nil
	}
	_, err := StartNode(gen, log.NewNopLogger(), "", Config{Bind: "tcp://localhost:0", LogLevel: "loud"})
	assert.Error(t, err)
}
