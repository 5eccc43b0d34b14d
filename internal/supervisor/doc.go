// Package supervisor runs the boot sequence: an optional interrupt window,
// selection and manifest loading, the selection menu when needed, file
// updates, and the hand-off to the selected bundle. Every path ends in a
// restart; failures are turned into a status line and a timed restart
// rather than propagated.
package supervisor
