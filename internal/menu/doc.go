// Package menu renders the bundle selection menu and reads the operator's
// numbered choice through the console input primitive.
package menu
