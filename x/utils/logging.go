package utils

import (
	"time"

	"github.com/iov-one/lockswap"
)

// Logging is a decorator to log messages as they pass through
type Logging struct{}

var _ lockswap.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Check logs error -> error, success -> debug
func (Logging) Check(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx, next lockswap.Checker) (*lockswap.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, true)
	return res, err
}

// Deliver logs error -> error, success -> info
func (Logging) Deliver(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx, next lockswap.Deliverer) (*lockswap.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, false)
	return res, err
}

func logDuration(ctx lockswap.Context, tx lockswap.Tx, start time.Time, msg string, err error, lowPrio bool) {
	logger := lockswap.GetLogger(ctx).With(
		"duration", time.Since(start)/time.Microsecond,
		"path", txPath(tx))

	// An empty message is still logged for the other fields.
	switch {
	case err != nil:
		logger.With("err", err).Error(msg)
	case lowPrio:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}

// txPath returns the routing path of the transaction message, or a
// placeholder if the message cannot be read.
func txPath(tx lockswap.Tx) string {
	if tx == nil {
		return "unknown"
	}
	msg, err := tx.GetMsg()
	if err != nil || msg == nil {
		return "unknown"
	}
	return msg.Path()
}
