/*
Package swaptest provides mocks and helpers for testing lockswap extensions
without running a full application.
*/
package swaptest
