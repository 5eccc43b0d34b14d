// Package console provides the supervisor's single input primitive: wait up
// to a duration for one line of operator input. One goroutine owns the
// underlying reader for the life of the process; lines that arrive after a
// wait has expired are kept for the next wait.
package console
