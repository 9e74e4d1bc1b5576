/*
Package utils contains decorators that every application stacks in front
of its router: panic recovery, transaction logging, prometheus metrics,
savepoints and action tags.
*/
package utils
