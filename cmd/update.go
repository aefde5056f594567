package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

const repositorySlug = "s0up4200/chainreact"

var checkOnly bool

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print version information",
	Args:              cobra.NoArgs,
	PersistentPreRunE: skipInit,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("chainreact %s (built %s, %s/%s)\n", version, buildTime, runtime.GOOS, runtime.GOARCH)
	},
}

// updateCmd replaces the running binary with the latest GitHub release
var updateCmd = &cobra.Command{
	Use:               "update",
	Short:             "Update chainreact to the latest release",
	Args:              cobra.NoArgs,
	PersistentPreRunE: skipInit,
	RunE:              runUpdate,
}

func init() {
	rootCmd.AddCommand(versionCmd, updateCmd)

	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "only check whether an update is available")
}

// needsUpdate reports whether latest is newer than current. Versions may carry
// a leading "v".
func needsUpdate(current, latest string) (bool, error) {
	cur, err := semver.ParseTolerant(current)
	if err != nil {
		return false, fmt.Errorf("current version %q is not a release version: %w", current, err)
	}
	next, err := semver.ParseTolerant(latest)
	if err != nil {
		return false, fmt.Errorf("latest version %q is not valid: %w", latest, err)
	}
	return next.GT(cur), nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repositorySlug))
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s/%s", runtime.GOOS, runtime.GOARCH)
	}

	newer, err := needsUpdate(version, latest.Version())
	if err != nil {
		return err
	}
	if !newer {
		fmt.Printf("✓ chainreact %s is up to date\n", version)
		return nil
	}

	fmt.Printf("New version available: %s (current %s)\n", latest.Version(), version)
	if checkOnly {
		fmt.Println(latest.URL)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Printf("✓ Updated to %s\n", latest.Version())
	return nil
}
