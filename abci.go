package lockswap

import (
	"fmt"

	"github.com/iov-one/lockswap/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
)

// DeliverResult is the outcome of a successful delivery. Failures are
// reported with an error instead.
type DeliverResult struct {
	// Data is returned to the client, for example the address of a
	// created escrow.
	Data []byte
	Log  string
	// Tags are indexed by tendermint and can be searched for.
	Tags []common.KVPair
}

// ToABCI returns the response for a successful DeliverTx.
func (d DeliverResult) ToABCI() abci.ResponseDeliverTx {
	return abci.ResponseDeliverTx{
		Data: d.Data,
		Log:  d.Log,
		Tags: d.Tags,
	}
}

// CheckResult is the outcome of a successful check.
type CheckResult struct {
	Data []byte
	Log  string
	// GasAllocated is reported to tendermint as the wanted gas.
	GasAllocated int64
}

// NewCheck returns a check result allocating given gas.
func NewCheck(gasAllocated int64, log string) *CheckResult {
	return &CheckResult{
		GasAllocated: gasAllocated,
		Log:          log,
	}
}

// ToABCI returns the response for a successful CheckTx.
func (c CheckResult) ToABCI() abci.ResponseCheckTx {
	return abci.ResponseCheckTx{
		Data:      c.Data,
		Log:       c.Log,
		GasWanted: c.GasAllocated,
	}
}

// DeliverTxError returns the DeliverTx response for a failure. See
// errors.ABCIInfo for what the log contains.
func DeliverTxError(err error, debug bool) abci.ResponseDeliverTx {
	code, log := errors.ABCIInfo(err, debug)
	return abci.ResponseDeliverTx{
		Code: code,
		Log:  fmt.Sprintf("cannot deliver tx: %s", log),
	}
}

// CheckTxError returns the CheckTx response for a failure.
func CheckTxError(err error, debug bool) abci.ResponseCheckTx {
	code, log := errors.ABCIInfo(err, debug)
	return abci.ResponseCheckTx{
		Code: code,
		Log:  fmt.Sprintf("cannot check tx: %s", log),
	}
}
