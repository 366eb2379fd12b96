package cli

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mvickers/driftscreen"
	"github.com/mvickers/driftscreen/internal/cli/cmd"
	"github.com/mvickers/driftscreen/internal/cli/cmd/utils"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "driftscreen",
	Short: "A hardware accelerated image screensaver",
	Long: `Driftscreen cycles a directory of images fullscreen across every
display, blending between them with OpenGL transition effects and falling
back to CPU compositing when the GPU path is unavailable.`,
	Run: func(c *cobra.Command, args []string) {
		if v, err := c.Flags().GetBool("show-config"); err == nil && v {
			log.Infof("Using config file: %v", viper.ConfigFileUsed())
			log.Infof("All settings:")
			utils.PrintJSONColored(viper.AllSettings())
			return
		}

		if v, err := c.Flags().GetBool("installconfig"); err == nil && v {
			utils.InstallDefaultConfig()
			return
		}

		babyBlue := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
		green := lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
		if v, err := c.Flags().GetBool("version"); err == nil && v {
			log.Infof("%v version %v",
				babyBlue.Render("driftscreen"),
				green.Render(strings.Trim(driftscreen.Version, "\n\r ")))
			return
		}

		cmd.StartManager()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	RegisterFlags(rootCmd)

	rootCmd.AddCommand(
		cmd.NewStopCmd(),
		cmd.NewNextCmd(),
		cmd.NewTriggerCmd(),
		cmd.NewStatusCmd(),
		cmd.NewLoadCmd(),
		cmd.NewGenManCmd(rootCmd),
	)
}
