package supervisor

// State is a step of the boot sequence.
type State int

// Boot states, in the order a boot can visit them. Terminal states end the
// boot with a restart.
const (
	StateInit             State = iota // boot started
	StateInterruptWindow               // operator may press the interrupt key
	StateLoadSelection                 // read the persisted selection
	StateFetchManifest                 // download the manifest or fall back to the cache
	StateResolveSelection              // pick the entry, decide whether to show the menu
	StateSelectionMenu                 // operator chooses an entry
	StatePlanUpdates                   // list the tracked files
	StateApplyUpdates                  // replace stale tracked files
	StateSelfUpdateRestart             // terminal: the supervisor's own file was replaced
	StateLaunch                        // run the selected program
	StateCleanExitRestart              // terminal: the program exited normally
	StateCrashRecovery                 // terminal: the program failed; delayed restart
	StateFatalRetry                    // terminal: no manifest at all; delayed restart
	StateCriticalRecovery              // terminal: supervisor fault or panic; delayed restart
)

var stateNames = map[State]string{
	StateInit:              "init",
	StateInterruptWindow:   "interrupt-window",
	StateLoadSelection:     "load-selection",
	StateFetchManifest:     "fetch-manifest",
	StateResolveSelection:  "resolve-selection",
	StateSelectionMenu:     "selection-menu",
	StatePlanUpdates:       "plan-updates",
	StateApplyUpdates:      "apply-updates",
	StateSelfUpdateRestart: "self-update-restart",
	StateLaunch:            "launch",
	StateCleanExitRestart:  "clean-exit-restart",
	StateCrashRecovery:     "crash-recovery",
	StateFatalRetry:        "fatal-retry",
	StateCriticalRecovery:  "critical-recovery",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether s ends the boot with a restart.
func (s State) Terminal() bool {
	switch s {
	case StateSelfUpdateRestart, StateCleanExitRestart, StateCrashRecovery, StateFatalRetry, StateCriticalRecovery:
		return true
	default:
		return false
	}
}

// delayed reports whether the restart from s waits for the recovery delay.
func (s State) delayed() bool {
	switch s {
	case StateCrashRecovery, StateFatalRetry, StateCriticalRecovery:
		return true
	default:
		return false
	}
}
