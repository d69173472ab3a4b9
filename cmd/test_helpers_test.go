package cmd

import (
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/viper"
)

// resetCLIState restores package-level configuration after a test.
func resetCLIState(t *testing.T) {
	t.Helper()

	originalConfig := *cliConfig
	originalNoColor := color.NoColor
	originalCfgFile := cfgFile
	color.NoColor = true
	viper.Reset()

	t.Cleanup(func() {
		*cliConfig = originalConfig
		color.NoColor = originalNoColor
		cfgFile = originalCfgFile
		viper.Reset()
	})
}
