/*
Package x contains the extensions of the lockswap application.

Extensions implement common functionality (Handler, Decorator, etc.) and
are combined together to construct the application. This package holds the
contracts shared between them.

Note that protobuf types in exported code will be prefixed by the package,
so follow standard go naming conventions and avoid stutter. Use
`escrow.MakeMsg` in place of `escrow.MakeEscrowMsg`.
*/
package x
