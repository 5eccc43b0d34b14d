// Package runtime hands control to the selected bundle. The ProcessLauncher
// runs the installed file as a child process, optionally through an
// interpreter, and blocks until it exits.
package runtime
