// Package transport is the network capability used to download the manifest
// and bundle files. Every download is read fully into memory before it is
// returned, so callers never observe a partial body.
package transport
