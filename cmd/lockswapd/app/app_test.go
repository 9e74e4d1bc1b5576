package app

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/lockswap"
	lsapp "github.com/iov-one/lockswap/app"
	"github.com/iov-one/lockswap/commands/server"
	"github.com/iov-one/lockswap/crypto"
	"github.com/iov-one/lockswap/swaptest"
	"github.com/iov-one/lockswap/x/cash"
	"github.com/iov-one/lockswap/x/escrow"
	"github.com/iov-one/lockswap/x/sigs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const chainID = "lockswap-test"

var meta = &lockswap.Metadata{Schema: 1}

// chain drives the application the way tendermint does. Every block is
// committed right away.
type chain struct {
	t      *testing.T
	app    lsapp.BaseApp
	height int64
}

func newChain(t *testing.T, state genesis) *chain {
	t.Helper()

	stack, err := Stack(prometheus.NewRegistry())
	require.NoError(t, err)
	application, err := Application("lockswap", stack, TxDecoder, "", false)
	require.NoError(t, err)
	application.WithLogger(log.NewNopLogger())

	raw, err := json.Marshal(state)
	require.NoError(t, err)
	application.InitChain(abci.RequestInitChain{
		ChainId:       chainID,
		AppStateBytes: raw,
	})
	c := &chain{t: t, app: application}
	c.block()
	return c
}

// sign builds a transaction carrying msg, signed by given key. The
// sequence is read from the committed state, so a signer can have only one
// transaction in a block.
func (c *chain) sign(key *crypto.PrivateKey, msg lockswap.Msg) []byte {
	c.t.Helper()

	var tx Tx
	require.NoError(c.t, tx.SetMsg(msg))
	seq, err := sigs.NextNonce(c.app.CheckStore(), key.PublicKey().Address())
	require.NoError(c.t, err)
	sig, err := sigs.SignTx(key, &tx, chainID, seq)
	require.NoError(c.t, err)
	tx.Signatures = append(tx.Signatures, sig)

	raw, err := proto.Marshal(&tx)
	require.NoError(c.t, err)
	return raw
}

// block delivers given transactions in a new block and commits it.
func (c *chain) block(txs ...[]byte) []abci.ResponseDeliverTx {
	c.t.Helper()

	c.height++
	c.app.BeginBlock(abci.RequestBeginBlock{
		Header: abci.Header{Height: c.height, ChainID: chainID},
	})
	res := make([]abci.ResponseDeliverTx, len(txs))
	for i, tx := range txs {
		res[i] = c.app.DeliverTx(tx)
	}
	c.app.EndBlock(abci.RequestEndBlock{Height: c.height})
	c.app.Commit()
	return res
}

func (c *chain) balance(owner, asset lockswap.Address) uint64 {
	c.t.Helper()
	n, err := cash.NewController().Balance(c.app.CheckStore(), owner, asset)
	if err != nil {
		return 0
	}
	return n
}

func newGenesis(holdings map[string]cash.GenesisHolding, owners map[string]lockswap.Address) genesis {
	var state genesis
	for name, h := range holdings {
		state.Cash = append(state.Cash, cash.GenesisAccount{
			Address:  owners[name],
			Holdings: []cash.GenesisHolding{h},
		})
	}
	state.Conf.Cash = &cash.Configuration{Metadata: meta}
	state.Conf.Escrow = &escrow.Configuration{Metadata: meta}
	return state
}

type swapParties struct {
	makerKey, takerKey *crypto.PrivateKey
	maker, taker       lockswap.Address
	assetA, assetB     lockswap.Address
}

func newSwapParties() swapParties {
	p := swapParties{
		makerKey: swaptest.NewKey(),
		takerKey: swaptest.NewKey(),
		assetA:   swaptest.NewAsset(),
		assetB:   swaptest.NewAsset(),
	}
	p.maker = p.makerKey.PublicKey().Address()
	p.taker = p.takerKey.PublicKey().Address()
	return p
}

func (p swapParties) genesis() genesis {
	return newGenesis(
		map[string]cash.GenesisHolding{
			"maker": {Asset: p.assetA, Amount: 100},
			"taker": {Asset: p.assetB, Amount: 100},
		},
		map[string]lockswap.Address{"maker": p.maker, "taker": p.taker},
	)
}

func (p swapParties) makeMsg(seed uint64, lock int64) *escrow.MakeMsg {
	return &escrow.MakeMsg{
		Metadata:   meta,
		Maker:      p.maker,
		AssetA:     p.assetA,
		AssetB:     p.assetB,
		Deposit:    10,
		Receive:    20,
		Seed:       seed,
		LockPeriod: lock,
	}
}

func TestSwapThroughABCI(t *testing.T) {
	p := newSwapParties()
	c := newChain(t, p.genesis())

	res := c.block(c.sign(p.makerKey, p.makeMsg(7, 2)))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	escrowID := lockswap.Address(res[0].Data)
	makeHeight := c.height

	wantID, _, err := escrow.RecordAddress(p.maker, 7)
	require.NoError(t, err)
	assert.Equal(t, wantID, escrowID)
	assert.Equal(t, uint64(90), c.balance(p.maker, p.assetA))

	// The record is visible through the query router.
	qres := c.app.Query(abci.RequestQuery{Path: "/escrows", Data: escrowID})
	require.Equal(t, uint32(0), qres.Code, qres.Log)
	var got escrow.Escrow
	require.NoError(t, lsapp.UnmarshalOneResult(qres.Value, &got))
	assert.Equal(t, p.maker, got.Maker)
	assert.Equal(t, makeHeight, got.StartTime)
	assert.Equal(t, int64(2), got.LockPeriod)

	// The same record is readable with the bucket over the committed state.
	var stored escrow.Escrow
	require.NoError(t, escrow.NewBucket().One(c.app.CheckStore(), escrowID, &stored))
	assert.Equal(t, got, stored)

	take := &escrow.TakeMsg{Metadata: meta, Taker: p.taker, EscrowID: escrowID}

	// One block after make the escrow is still locked.
	res = c.block(c.sign(p.takerKey, take))
	assert.Equal(t, escrow.ErrEscrowLocked.ABCICode(), res[0].Code, res[0].Log)

	// start + lock is the first block the escrow can be taken in.
	require.Equal(t, makeHeight+2, c.height+1)
	res = c.block(c.sign(p.takerKey, take))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)

	assert.Equal(t, uint64(90), c.balance(p.maker, p.assetA))
	assert.Equal(t, uint64(20), c.balance(p.maker, p.assetB))
	assert.Equal(t, uint64(80), c.balance(p.taker, p.assetB))
	assert.Equal(t, uint64(10), c.balance(p.taker, p.assetA))

	qres = c.app.Query(abci.RequestQuery{Path: "/escrows", Data: escrowID})
	require.Equal(t, uint32(0), qres.Code, qres.Log)
	assert.Error(t, lsapp.UnmarshalOneResult(qres.Value, &got), "record is gone")
}

func TestRefundThroughABCI(t *testing.T) {
	p := newSwapParties()
	c := newChain(t, p.genesis())

	res := c.block(c.sign(p.makerKey, p.makeMsg(1, 1000)))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	escrowID := lockswap.Address(res[0].Data)

	refund := &escrow.RefundMsg{Metadata: meta, EscrowID: escrowID}

	// Only the maker can refund.
	res = c.block(c.sign(p.takerKey, refund))
	assert.Equal(t, uint32(2), res[0].Code, res[0].Log)

	res = c.block(c.sign(p.makerKey, refund))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	assert.Equal(t, uint64(100), c.balance(p.maker, p.assetA))

	// The seed can be used again once the escrow is gone.
	res = c.block(c.sign(p.makerKey, p.makeMsg(1, 1000)))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	assert.Equal(t, escrowID, lockswap.Address(res[0].Data))
}

func TestRejectedTransactions(t *testing.T) {
	p := newSwapParties()
	c := newChain(t, p.genesis())

	unsigned, err := proto.Marshal(&Tx{MakeMsg: p.makeMsg(1, 1)})
	require.NoError(t, err)

	// The taker cannot create an escrow spending the maker's funds.
	stolen := c.sign(p.takerKey, p.makeMsg(2, 1))

	res := c.block(unsigned, stolen, []byte("not a transaction"))
	assert.Equal(t, uint32(2), res[0].Code, "unsigned: %s", res[0].Log)
	assert.Equal(t, uint32(2), res[1].Code, "wrong signer: %s", res[1].Log)
	assert.NotEqual(t, uint32(0), res[2].Code)
	assert.Equal(t, uint64(100), c.balance(p.maker, p.assetA))
}

func TestConcurrentTakeAndRefund(t *testing.T) {
	p := newSwapParties()
	c := newChain(t, p.genesis())

	res := c.block(c.sign(p.makerKey, p.makeMsg(3, 0)))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	escrowID := lockswap.Address(res[0].Data)

	take := c.sign(p.takerKey, &escrow.TakeMsg{Metadata: meta, Taker: p.taker, EscrowID: escrowID})
	refund := c.sign(p.makerKey, &escrow.RefundMsg{Metadata: meta, EscrowID: escrowID})

	c.height++
	c.app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: c.height, ChainID: chainID}})

	var wg sync.WaitGroup
	codes := make([]uint32, 2)
	for i, tx := range [][]byte{take, refund} {
		wg.Add(1)
		go func(i int, tx []byte) {
			defer wg.Done()
			codes[i] = c.app.DeliverTx(tx).Code
		}(i, tx)
	}
	wg.Wait()
	c.app.EndBlock(abci.RequestEndBlock{Height: c.height})
	c.app.Commit()

	var ok int
	for _, code := range codes {
		if code == 0 {
			ok++
		} else {
			assert.Equal(t, uint32(3), code, "loser must not find the escrow")
		}
	}
	require.Equal(t, 1, ok)

	if codes[0] == 0 {
		assert.Equal(t, uint64(90), c.balance(p.maker, p.assetA))
		assert.Equal(t, uint64(10), c.balance(p.taker, p.assetA))
	} else {
		assert.Equal(t, uint64(100), c.balance(p.maker, p.assetA))
		assert.Equal(t, uint64(100), c.balance(p.taker, p.assetB))
	}
}

func TestGenInitOptions(t *testing.T) {
	key := swaptest.NewKey()
	addr := key.PublicKey().Address()
	asset := swaptest.NewAsset()

	raw, err := GenInitOptions([]string{asset.String(), addr.String()})
	require.NoError(t, err)

	var state genesis
	require.NoError(t, json.Unmarshal(raw, &state))
	require.Len(t, state.Cash, 1)
	assert.Equal(t, addr, state.Cash[0].Address)

	c := newChain(t, state)
	assert.Equal(t, uint64(genesisAmount), c.balance(addr, asset))

	_, err = GenInitOptions([]string{"zz"})
	assert.Error(t, err)
}

func TestGenerateApp(t *testing.T) {
	application, err := GenerateApp(&server.Options{
		Logger:     log.NewNopLogger(),
		Registerer: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	info := application.Info(abci.RequestInfo{})
	assert.Equal(t, "lockswap", info.Data)
	assert.Equal(t, lockswap.Version(), info.Version)
}

func TestTxGetMsg(t *testing.T) {
	p := newSwapParties()

	var empty Tx
	_, err := empty.GetMsg()
	assert.Error(t, err)

	two := Tx{
		MakeMsg:   p.makeMsg(1, 1),
		RefundMsg: &escrow.RefundMsg{Metadata: meta, Maker: p.maker, Seed: 1},
	}
	_, err = two.GetMsg()
	assert.Error(t, err)

	var one Tx
	require.NoError(t, one.SetMsg(p.makeMsg(1, 1)))
	msg, err := one.GetMsg()
	require.NoError(t, err)
	assert.Equal(t, "escrow/make", msg.Path())

	// Sign bytes do not depend on the signatures.
	before, err := one.GetSignBytes()
	require.NoError(t, err)
	sig, err := sigs.SignTx(p.makerKey, &one, chainID, 0)
	require.NoError(t, err)
	one.Signatures = []*sigs.StdSignature{sig}
	after, err := one.GetSignBytes()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
