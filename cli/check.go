package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Flames4fun/csl-core/scenario"
)

const watchDebounce = 200 * time.Millisecond

var (
	checkJSON  bool
	checkWatch bool
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Emit results as JSON")
	checkCmd.Flags().BoolVar(&checkWatch, "watch", false, "Rerun when scenario or policy files change")
}

var checkCmd = &cobra.Command{
	Use:   "check scenario.yaml [scenario.yaml ...]",
	Short: "Run scenario files against their constitutions",
	Long: "Loads scenario YAML files, verifies each case against the scenario's\n" +
		"constitution, and reports pass/fail.\n\n" +
		"Exit code 0 if all cases pass, 1 if any fail.\n" +
		"Use in CI to gate deployments on policy correctness.",
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	if checkWatch {
		return watchScenarios(args)
	}

	ok, err := runScenarios(cmd.Context(), cmd.OutOrStdout(), args)
	if err != nil {
		return err
	}
	if !ok {
		os.Exit(1)
	}
	return nil
}

func runScenarios(ctx context.Context, w io.Writer, paths []string) (bool, error) {
	ok := true
	for _, path := range paths {
		s, err := scenario.Load(path)
		if err != nil {
			return false, err
		}
		result, err := s.Run(ctx)
		if err != nil {
			return false, fmt.Errorf("%s: %w", path, err)
		}

		if checkJSON {
			if err := scenario.FormatJSON(w, result); err != nil {
				return false, err
			}
		} else {
			scenario.FormatText(w, result, styledOutput())
		}
		if !result.OK() {
			ok = false
		}
	}
	return ok, nil
}

// watchScenarios reruns the scenario files whenever one of them, or a
// policy file next to them, changes. A single debounce timer absorbs
// editor save bursts. Blocks until interrupted.
func watchScenarios(paths []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range watchDirs(paths) {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	run := func() {
		if _, err := runScenarios(ctx, os.Stdout, paths); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	run()

	debounce := time.NewTimer(watchDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-debounce.C:
			run()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !isYAML(event.Name) {
				continue
			}
			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// watchDirs collects the directories holding the scenario files and any
// policy files they reference.
func watchDirs(paths []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, path := range paths {
		add(filepath.Dir(path))
		s, err := scenario.Load(path)
		if err != nil || s.Policy == "" {
			continue
		}
		policy := s.Policy
		if !filepath.IsAbs(policy) {
			policy = filepath.Join(filepath.Dir(path), policy)
		}
		add(filepath.Dir(policy))
	}
	return dirs
}

func isYAML(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
