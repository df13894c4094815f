package completion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// NewUninstallCmd creates the uninstall-autocomplete command
func NewUninstallCmd(rootCmd *cobra.Command) *cobra.Command {
	var shellFlag string

	cmd := &cobra.Command{
		Use:   "uninstall-autocomplete",
		Short: "Remove the " + rootCmd.Name() + " completion script",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}
			return runUninstall(rootCmd.Name(), shellFlag, home, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&shellFlag, "shell", "s", "", "Target shell: bash, zsh, fish or powershell (default: from $SHELL)")

	return cmd
}

func runUninstall(program, shellFlag, home string, out io.Writer) error {
	shell, err := resolveShell(shellFlag)
	if err != nil {
		return err
	}

	installPath, err := GetInstallPath(shell, home, program)
	if err != nil {
		return err
	}

	if _, err := os.Stat(installPath); os.IsNotExist(err) {
		return fmt.Errorf("%s completion not installed for %s (nothing at %s)", program, shell, installPath)
	}

	if shell == Bash {
		if err := disableBashAutoLoad(filepath.Join(home, ".bash_completion"), program); err != nil {
			fmt.Fprintf(out, "Warning: ~/.bash_completion not updated: %v\n", err)
		}
	}

	if err := os.Remove(installPath); err != nil {
		return fmt.Errorf("failed to remove completion file: %w", err)
	}

	fmt.Fprintf(out, "Removed %s completion for %s from %s\n", shell, program, installPath)
	return nil
}

// disableBashAutoLoad drops the line carrying the program's marker from bashCompletionFile
func disableBashAutoLoad(bashCompletionFile, program string) error {
	content, err := os.ReadFile(bashCompletionFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	marker := autoLoadMarker(program)
	lines := strings.SplitAfter(string(content), "\n")
	kept := slices.DeleteFunc(lines, func(line string) bool {
		return strings.Contains(line, marker)
	})
	return os.WriteFile(bashCompletionFile, []byte(strings.Join(kept, "")), 0644)
}
