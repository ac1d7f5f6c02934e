package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/anisan-cli/skipsync/icon"
	"github.com/anisan-cli/skipsync/key"
	"github.com/anisan-cli/skipsync/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
)

// checkPlayer exits with install instructions when the configured mpv cannot be found.
func checkPlayer() string {
	name := viper.GetString(key.PlayerPath)
	if name == "" {
		name = "mpv"
	}

	path, err := exec.LookPath(name)
	if err != nil {
		printMissingPlayer(name)
		os.Exit(1)
	}
	return path
}

func printMissingPlayer(name string) {
	var install string
	switch runtime.GOOS {
	case "darwin":
		install = "brew install mpv"
	case "linux":
		install = "sudo apt install mpv"
	case "windows":
		install = "scoop install mpv"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s mpv not found", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("%q is not an executable in your PATH. Set %s to the mpv binary.", name, key.PlayerPath))

	hint := ""
	if install != "" {
		hint = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(install))
	}

	fmt.Println(box.Render(lipgloss.JoinVertical(lipgloss.Left, title, "\n", body, hint)))
}
