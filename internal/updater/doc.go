// Package updater keeps tracked local files in sync with their remote
// copies. Each file is downloaded in full and compared by MD5 digest; a
// stale file is backed up to a single <name>.bak generation and then
// replaced atomically. Nothing local is touched until the new content is in
// memory, so a failed download never leaves a partial file behind.
package updater
