package app

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/commands/server"
	"github.com/iov-one/lockswap/crypto"
	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/x/cash"
	"github.com/iov-one/lockswap/x/escrow"
	abci "github.com/tendermint/tendermint/abci/types"
)

// genesisAmount is what the development account starts with.
const genesisAmount = 123456789

// NativeAsset returns the asset used by a development chain when none is
// given to GenInitOptions.
func NativeAsset() lockswap.Address {
	addr, _, err := lockswap.NewCondition("cash", "asset", []byte("native")).Derive()
	if err != nil {
		panic(err)
	}
	return addr
}

type genesisConf struct {
	Cash   *cash.Configuration   `json:"cash"`
	Escrow *escrow.Configuration `json:"escrow"`
}

type genesis struct {
	Cash []cash.GenesisAccount `json:"cash"`
	Conf genesisConf           `json:"conf"`
}

// GenInitOptions will produce some basic options for one rich
// account, to use for dev mode.
//
// The first argument is the asset the account holds, the second is the
// account address. Both are generated when missing.
func GenInitOptions(args []string) (json.RawMessage, error) {
	asset := NativeAsset()
	if len(args) > 0 {
		a, err := lockswap.ParseAddress(args[0])
		if err != nil {
			return nil, errors.Wrap(err, "asset")
		}
		if err := a.Validate(); err != nil {
			return nil, errors.Wrap(err, "asset")
		}
		asset = a
	}

	var addr lockswap.Address
	if len(args) > 1 {
		a, err := lockswap.ParseAddress(args[1])
		if err != nil {
			return nil, errors.Wrap(err, "address")
		}
		if err := a.Validate(); err != nil {
			return nil, errors.Wrap(err, "address")
		}
		addr = a
	} else {
		// if no address provided, auto-generate one
		// and print out the keys
		a, keys, err := GenerateCoinKey()
		if err != nil {
			return nil, err
		}
		addr = a
		fmt.Println(keys)
	}

	gen := genesis{
		Cash: []cash.GenesisAccount{
			{
				Address: addr,
				Holdings: []cash.GenesisHolding{
					{Asset: asset, Amount: genesisAmount},
				},
			},
		},
		Conf: genesisConf{
			Cash: &cash.Configuration{
				Metadata:    &lockswap.Metadata{Schema: 1},
				Owner:       addr,
				NativeAsset: asset,
			},
			Escrow: &escrow.Configuration{
				Metadata: &lockswap.Metadata{Schema: 1},
				Owner:    addr,
			},
		},
	}
	return json.MarshalIndent(gen, "", "  ")
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(options *server.Options) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if options.Home != "" {
		dbPath = filepath.Join(options.Home, "lockswap.db")
	}

	stack, err := Stack(options.Registerer)
	if err != nil {
		return nil, err
	}
	application, err := Application("lockswap", stack, TxDecoder, dbPath, options.Debug)
	if err != nil {
		return nil, err
	}

	// set the logger and return
	application.WithLogger(options.Logger)
	return application, nil
}

type output struct {
	Pubkey *crypto.PublicKey  `json:"pub_key"`
	Secret *crypto.PrivateKey `json:"secret"`
}

// GenerateCoinKey returns the address of a public key,
// along with a json representation of the keys.
// You can give assets to this address and
// import the keys in a client to use them
func GenerateCoinKey() (lockswap.Address, string, error) {
	privKey := crypto.GenPrivKeyEd25519()
	pubKey := privKey.PublicKey()
	addr := pubKey.Address()

	out := output{Pubkey: pubKey, Secret: privKey}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", err
	}

	return addr, string(keys), nil
}
