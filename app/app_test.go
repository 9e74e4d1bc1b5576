package app

import (
	"context"
	"encoding/binary"
	"strconv"
	"sync"
	"testing"

	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/orm"
	"github.com/iov-one/lockswap/store/iavl"
	"github.com/iov-one/lockswap/swaptest"
	"github.com/iov-one/lockswap/x/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
)

// pathDecoder turns the raw transaction bytes into the message path.
func pathDecoder(raw []byte) (lockswap.Tx, error) {
	if len(raw) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "empty tx")
	}
	return &swaptest.Tx{Msg: &swaptest.Msg{RoutePath: string(raw)}}, nil
}

// genesisWriter stores the "greeting" genesis option under the "hello"
// key.
type genesisWriter struct{}

func (genesisWriter) FromGenesis(opts lockswap.Options, db lockswap.KVStore) error {
	var greeting string
	if err := opts.ReadOptions("greeting", &greeting); err != nil {
		return err
	}
	return db.Set([]byte("hello"), []byte(greeting))
}

// incrementHandler does a read-modify-write of a counter.
type incrementHandler struct{}

func (incrementHandler) Check(lockswap.Context, lockswap.KVStore, lockswap.Tx) (*lockswap.CheckResult, error) {
	return &lockswap.CheckResult{}, nil
}

func (incrementHandler) Deliver(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx) (*lockswap.DeliverResult, error) {
	raw, err := db.Get([]byte("counter"))
	if err != nil {
		return nil, err
	}
	var n uint64
	if raw != nil {
		n = binary.BigEndian.Uint64(raw)
	}
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, n+1)
	return &lockswap.DeliverResult{}, db.Set([]byte("counter"), out)
}

func newTestApp(t *testing.T) BaseApp {
	t.Helper()

	qr := lockswap.NewQueryRouter()
	orm.RegisterQuery(qr)
	s, err := NewStoreApp("test-app", iavl.NewMemCommitStore(), qr, context.Background())
	require.NoError(t, err)
	s.WithInit(genesisWriter{})

	r := NewRouter()
	r.Handle("write/ok", swaptest.WriteHandler{Key: []byte("ok"), Value: []byte("1")})
	r.Handle("write/fail", swaptest.WriteHandler{Key: []byte("fail"), Value: []byte("1"), Err: errors.ErrInvalidState})
	r.Handle("write/panic", swaptest.PanicHandler{Msg: "boom"})
	r.Handle("counter/inc", incrementHandler{})

	h := ChainDecorators(utils.NewRecovery()).WithHandler(r)
	return NewBaseApp(s, pathDecoder, h, false)
}

func TestBaseApp(t *testing.T) {
	app := newTestApp(t)

	app.InitChain(abci.RequestInitChain{
		ChainId:       "test-chain",
		AppStateBytes: []byte(`{"greeting": "world"}`),
	})
	assert.Equal(t, "test-chain", app.GetChainID())
	assert.Panics(t, func() {
		app.InitChain(abci.RequestInitChain{ChainId: "test-chain", AppStateBytes: []byte(`{}`)})
	}, "genesis can be loaded only once")

	app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1, ChainID: "test-chain"}})
	height, ok := lockswap.GetHeight(app.BlockContext())
	require.True(t, ok)
	assert.Equal(t, int64(1), height)

	cres := app.CheckTx([]byte("write/ok"))
	assert.Equal(t, uint32(0), cres.Code, cres.Log)

	cases := map[string]struct {
		tx       string
		wantCode uint32
	}{
		"success":        {tx: "write/ok", wantCode: 0},
		"handler error":  {tx: "write/fail", wantCode: 10},
		"unknown path":   {tx: "write/unknown", wantCode: 3},
		"recovers panic": {tx: "write/panic", wantCode: 111222},
		"cannot decode":  {tx: "", wantCode: 14},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			res := app.DeliverTx([]byte(tc.tx))
			assert.Equal(t, tc.wantCode, res.Code, res.Log)
		})
	}

	app.EndBlock(abci.RequestEndBlock{Height: 1})
	commit := app.Commit()
	assert.NotEmpty(t, commit.Data)

	info := app.Info(abci.RequestInfo{})
	assert.Equal(t, int64(1), info.LastBlockHeight)
	assert.Equal(t, commit.Data, info.LastBlockAppHash)
	assert.Equal(t, "test-app", info.Data)

	// Failed transactions leave nothing behind.
	db := newABCIStore(app)
	for key, want := range map[string][]byte{"ok": []byte("1"), "hello": []byte(`world`), "fail": nil} {
		got, err := db.Get([]byte(key))
		require.NoError(t, err)
		assert.Equal(t, want, got, key)
	}
}

func TestQuery(t *testing.T) {
	app := newTestApp(t)
	app.InitChain(abci.RequestInitChain{ChainId: "test-chain", AppStateBytes: []byte(`{"greeting": "hi"}`)})
	app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1}})
	require.Equal(t, uint32(0), app.DeliverTx([]byte("write/ok")).Code)
	app.Commit()

	res := app.Query(abci.RequestQuery{Path: "/nope", Data: []byte("ok")})
	assert.Equal(t, uint32(3), res.Code)

	res = app.Query(abci.RequestQuery{Path: "/?range"})
	assert.Equal(t, uint32(14), res.Code)

	db := newABCIStore(app)
	it, err := db.Iterator([]byte("h"), []byte("p"))
	require.NoError(t, err)
	var keys []string
	for {
		k, _, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			break
		}
		require.NoError(t, err)
		keys = append(keys, string(k))
	}
	it.Release()
	assert.Equal(t, []string{"hello", "ok"}, keys)

	it, err = db.ReverseIterator(nil, nil)
	require.NoError(t, err)
	k, _, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, "ok", string(k))

	ok, err := db.Has([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSerializedDelivery(t *testing.T) {
	app := newTestApp(t)
	app.InitChain(abci.RequestInitChain{ChainId: "test-chain", AppStateBytes: []byte(`{}`)})
	app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1}})

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			app.DeliverTx([]byte("counter/inc"))
		}()
	}
	wg.Wait()
	app.Commit()

	raw, err := newABCIStore(app).Get([]byte("counter"))
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(workers), strconv.FormatUint(binary.BigEndian.Uint64(raw), 10))
}

func TestRestart(t *testing.T) {
	cs := iavl.NewMemCommitStore()
	qr := lockswap.NewQueryRouter()
	s, err := NewStoreApp("test-app", cs, qr, context.Background())
	require.NoError(t, err)
	s.WithInit(genesisWriter{})
	s.InitChain(abci.RequestInitChain{ChainId: "test-chain", AppStateBytes: []byte(`{}`)})
	s.Commit()

	again, err := NewStoreApp("test-app", cs, qr, context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-chain", again.GetChainID())
	assert.Equal(t, "test-chain", lockswap.GetChainID(again.BlockContext()))
}
