// Package manifest handles the remote bundle manifest: decoding, JSON Schema
// validation, the last-known-good cache, and change detection between the
// freshly fetched manifest and the cached one.
package manifest
