// Package digest implements the MD5 content digest (RFC 1321) used to decide
// whether an installed file matches its remote counterpart. Two files with
// equal digests are treated as identical; collision handling is out of scope.
package digest
