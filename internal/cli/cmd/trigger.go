package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mvickers/driftscreen/internal/compositor"
	"github.com/mvickers/driftscreen/internal/ipc"
)

func NewTriggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trigger [effect]",
		Short: "Run a transition effect immediately",
		Long: `Advances to the next image using the named transition effect:
crossfade, slide, wipe, blockflip, blockspin, blinds, diffuse, peel, warp,
raindrops, crumble, particle, or "random".`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			effect := args[0]
			if effect != "random" && compositor.KindFromName(effect) == compositor.KindNone {
				log.Fatalf("Unknown effect %q", effect)
			}
			if err := ipc.SendTrigger(effect); err != nil {
				log.Fatalf("Failed to send 'trigger' command: %v", err)
			}
			log.Infof("Triggered %s transition", effect)
		},
	}
}
