package probe

import (
	"github.com/SafeMPC/custody-signer/internal/util/command"
	"github.com/spf13/cobra"
)

const (
	addrFlag    = "addr"
	timeoutFlag = "timeout"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("probe",
		newLiveness(),
		newReadiness(),
	)
}
