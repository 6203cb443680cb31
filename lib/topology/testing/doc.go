// Package testing provides an in-process monitor for tests of code built on
// the topology package. The monitor hands out real go-redis clients connected
// to a miniredis server, so commands run against a working store engine
// without a sentinel deployment.
package testing
