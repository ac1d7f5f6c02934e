package version

import (
	"fmt"

	"github.com/anisan-cli/skipsync/color"
	"github.com/anisan-cli/skipsync/constant"
	"github.com/anisan-cli/skipsync/icon"
	"github.com/anisan-cli/skipsync/key"
	"github.com/anisan-cli/skipsync/style"
	"github.com/anisan-cli/skipsync/util"
	"github.com/spf13/viper"
)

// Notify displays a terminal alert if a more recent stable application version is available.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	erase := util.PrintErasable(fmt.Sprintf("%s Checking if new version is available...", icon.Get(icon.Progress)))
	version, err := Latest()
	erase()
	if err != nil || !Newer(version) {
		return
	}

	fmt.Printf(`
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(version),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint("https://github.com/anisan-cli/skipsync/releases/tag/v"+version),
	)
}

// Newer reports whether version is a release after the running one.
func Newer(version string) bool {
	comp, err := Compare(version, constant.Version)
	return err == nil && comp > 0
}
