/*
Package app contains the glue that turns handlers and decorators into a
tendermint ABCI application.

StoreApp owns the merkle store and answers Info, Query, InitChain,
BeginBlock, EndBlock and Commit. BaseApp adds CheckTx and DeliverTx on top
by decoding transactions and passing them through a Handler, usually a
Router wrapped with ChainDecorators.

All ABCI calls are serialized. A transaction that fails leaves no trace in
the store.
*/
package app
