// Package testutil provides in-memory implementations of the storage and
// transport capabilities for package tests.
package testutil
