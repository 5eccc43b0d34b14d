// Package platform provides the operating-system touch points the supervisor
// needs: permission management that degrades to a no-op on Windows, and the
// restart mechanisms used to bring the device back to a fresh boot.
package platform
