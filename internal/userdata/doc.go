// Package userdata manages the supervisor's persisted device state: the state
// and install directory layout, and the operator's bundle selection.
package userdata
