package completion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// NewInstallCmd creates the install-autocomplete command
func NewInstallCmd(rootCmd *cobra.Command) *cobra.Command {
	var shellFlag string

	cmd := &cobra.Command{
		Use:   "install-autocomplete",
		Short: "Enable tab completion of " + rootCmd.Name() + " commands and flags",
		Long: `Writes a completion script for ` + rootCmd.Name() + ` where your shell looks for one.

The shell is taken from $SHELL unless --shell is given. Completion covers the
compress command, its flags (--rate, --max-width, --format, --output-dir, ...)
and image paths.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}
			return runInstall(rootCmd, shellFlag, home, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&shellFlag, "shell", "s", "", "Target shell: bash, zsh, fish or powershell (default: from $SHELL)")

	return cmd
}

func runInstall(rootCmd *cobra.Command, shellFlag, home string, out io.Writer) error {
	shell, err := resolveShell(shellFlag)
	if err != nil {
		return err
	}

	installPath, err := GetInstallPath(shell, home, rootCmd.Name())
	if err != nil {
		return err
	}

	dir := filepath.Dir(installPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create completion directory %s: %w", dir, err)
	}

	file, err := os.Create(installPath)
	if err != nil {
		return fmt.Errorf("failed to create completion file: %w", err)
	}
	if err := generateScript(rootCmd, shell, file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	if shell == Bash {
		// The script is usable even when ~/.bash_completion cannot be updated
		if err := enableBashAutoLoad(filepath.Join(home, ".bash_completion"), rootCmd.Name(), installPath); err != nil {
			fmt.Fprintf(out, "Warning: ~/.bash_completion not updated, source %s yourself: %v\n", installPath, err)
		}
	}

	fmt.Fprintf(out, "Wrote %s completion for %s to %s\n", shell, rootCmd.Name(), installPath)
	switch shell {
	case Bash:
		fmt.Fprintln(out, "New bash sessions pick it up automatically.")
	case Zsh:
		fmt.Fprintf(out, "Add %s to fpath before compinit in ~/.zshrc:\n  fpath=(%s $fpath)\n  autoload -Uz compinit && compinit\n", dir, dir)
	case Fish:
		fmt.Fprintln(out, "New fish sessions pick it up automatically; run 'exec fish' to reload now.")
	case Powershell:
		fmt.Fprintf(out, "Dot-source it from your PowerShell profile:\n  . %s\n", installPath)
	}
	return nil
}

// autoLoadMarker tags the line this package owns in ~/.bash_completion.
func autoLoadMarker(program string) string {
	return "# " + program + " completion"
}

// enableBashAutoLoad adds a guarded source line for installPath, tagged with the
// program's marker, unless the marker is already present.
func enableBashAutoLoad(bashCompletionFile, program, installPath string) error {
	marker := autoLoadMarker(program)
	content, err := os.ReadFile(bashCompletionFile)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if strings.Contains(string(content), marker) {
		return nil
	}

	line := fmt.Sprintf("[ -r %q ] && . %q %s\n", installPath, installPath, marker)
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		line = "\n" + line
	}
	return os.WriteFile(bashCompletionFile, append(content, line...), 0644)
}
