package supervisor

import (
	"github.com/agentx-labs/bootkeeper/internal/manifest"
	"github.com/agentx-labs/bootkeeper/internal/updater"
	"github.com/agentx-labs/bootkeeper/internal/userdata"
)

// bootContext carries everything one boot learns from state to state. It is
// created by Run and dropped when the boot ends.
type bootContext struct {
	state State
	trail []State

	forceMenu bool
	selection *userdata.Selection
	fetch     *manifest.FetchResult
	entry     *manifest.Entry
	files     []updater.TrackedFile
	outcomes  []updater.Outcome

	err        error
	restartErr error
}

func (bc *bootContext) enter(s State) {
	bc.state = s
	bc.trail = append(bc.trail, s)
}

func (bc *bootContext) entryName() string {
	if bc.entry == nil {
		return "Program"
	}
	return bc.entry.DisplayName()
}
