// Package open launches files with the system's default handler or the user's editor.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/anisan-cli/skipsync/constant"
)

// Run opens input with the default system handler and waits for the handler to exit.
func Run(input string) error {
	args, ok := command(runtime.GOOS, input)
	if !ok {
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
	return exec.Command(args[0], args[1:]...).Run()
}

// Editor opens path in $VISUAL or $EDITOR on the current terminal, falling back to the
// default handler when neither is set.
func Editor(path string) error {
	editor := editorCommand(os.Getenv("VISUAL"), os.Getenv("EDITOR"))
	if len(editor) == 0 {
		return Run(path)
	}

	cmd := exec.Command(editor[0], append(editor[1:], path)...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	return cmd.Run()
}

// editorCommand splits the first configured editor into its program and arguments.
func editorCommand(candidates ...string) []string {
	for _, c := range candidates {
		if fields := strings.Fields(c); len(fields) > 0 {
			return fields
		}
	}
	return nil
}

func command(goos, input string) ([]string, bool) {
	switch goos {
	case constant.Windows:
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return []string{rundll, "url.dll,FileProtocolHandler", input}, true
	case constant.Darwin:
		return []string{"open", input}, true
	case constant.Linux:
		return []string{"xdg-open", input}, true
	case constant.Android:
		return []string{"termux-open", input}, true
	default:
		return nil, false
	}
}
