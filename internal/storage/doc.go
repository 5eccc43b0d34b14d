// Package storage is the local persistence capability used by the supervisor
// for installed files, their backups, the manifest cache and the persisted
// selection. Writes are atomic (temp file + rename) so an installed file is
// always either its previous version or its new version.
package storage
