package runtime

import (
	"context"
)

// Launcher runs an installed bundle to completion.
type Launcher interface {
	// Launch blocks until the program at path exits. A nil error means a
	// clean exit; an abnormal termination wraps faults.ErrLaunch.
	Launch(ctx context.Context, path string) error
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context, path string) error

// Launch implements Launcher.
func (f LauncherFunc) Launch(ctx context.Context, path string) error {
	return f(ctx, path)
}
