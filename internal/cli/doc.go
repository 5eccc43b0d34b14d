// Package cli defines the Cobra command tree for the bootkeeper CLI. The root
// command runs the supervisor; each other file registers one subcommand with
// the root command. Command implementations delegate to internal packages
// for business logic and only handle flag parsing, I/O formatting, and user
// interaction.
package cli
