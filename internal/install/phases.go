package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pirakansa/appstack/internal/cli/execrun"
	"github.com/pirakansa/appstack/internal/coordinator"
	"github.com/pirakansa/appstack/internal/task"
)

const (
	TitleRemove   = "Removing directories"
	TitleDownload = "Downloading"
	TitleExtract  = "Extracting"
	TitleActions  = "Running actions"
	TitleScripts  = "Writing startup scripts"
	TitleClone    = "Cloning repositories"
)

// RemoveDir deletes dir and reports whether it existed.
func RemoveDir(dir string) (bool, error) {
	if _, err := os.Lstat(dir); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := os.RemoveAll(dir); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveTask returns r as a task resolving to whether the directory existed.
func RemoveTask(r Removal) task.Func {
	return func(ctx context.Context, report task.Reporter) (any, error) {
		removed, err := RemoveDir(r.Dir)
		if err != nil {
			return nil, err
		}
		return removed, nil
	}
}

// ScriptContent wraps a component command into a bash script that starts in
// workDir.
func ScriptContent(name, workDir, command string) string {
	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	fmt.Fprintf(&b, "echo \"------ Starting: %s ------\"\n", name)
	b.WriteString("echo\n")
	if workDir != "" {
		fmt.Fprintf(&b, "cd %s\n", execrun.Quote(workDir))
	}
	b.WriteString(command)
	if !strings.HasSuffix(command, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}

// ScriptTask writes s as an executable script.
func ScriptTask(s ScriptFile, workDir string) task.Func {
	return func(ctx context.Context, report task.Reporter) (any, error) {
		if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(s.Path, []byte(ScriptContent(s.Name, workDir, s.Content)), 0o755); err != nil {
			return nil, err
		}
		return s.Path, os.Chmod(s.Path, 0o755)
	}
}

// CloneTask runs git clone for c.
func CloneTask(c Clone, runner execrun.Runner) task.Func {
	return func(ctx context.Context, report task.Reporter) (any, error) {
		if err := os.MkdirAll(c.Dir, 0o755); err != nil {
			return nil, err
		}
		_, err := runner.Run(ctx, execrun.Command{Name: "git", Args: []string{"clone", c.URL}, Dir: c.Dir})
		return nil, err
	}
}

// labelled prefixes errors of fn with label so the failing step is named.
func labelled(label string, fn task.Func) task.Func {
	return func(ctx context.Context, report task.Reporter) (any, error) {
		res, err := fn(ctx, report)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		return res, nil
	}
}

func formatRemoval(removals []Removal) coordinator.Formatter {
	return func(s coordinator.Slot) string {
		r := removals[s.Index]
		if removed, ok := s.Result.(bool); ok && s.Settled {
			if removed {
				return fmt.Sprintf("%s => Removed: %s", r.Name, r.Dir)
			}
			return fmt.Sprintf("%s => Didn't exist", r.Name)
		}
		return r.Name
	}
}

func formatDownload(downloads []Download) coordinator.Formatter {
	return func(s coordinator.Slot) string {
		d := downloads[s.Index]
		if res, ok := s.Result.(DownloadResult); ok {
			if res.Status == StatusAlreadyExisted {
				return fmt.Sprintf("%s => %s", d.Name, res.Status)
			}
			return fmt.Sprintf("%s => %s: %s MiB", d.Name, res.Status, mebibytes(res.Size))
		}
		if p, ok := s.Progress.(DownloadProgress); ok && s.HasProgress {
			if p.Percentage < 0 {
				return fmt.Sprintf("%s => %s MiB", d.Name, mebibytes(p.Downloaded))
			}
			return fmt.Sprintf("%s => %d%% %s/%s MiB", d.Name, p.Percentage, mebibytes(p.Downloaded), mebibytes(p.Total))
		}
		return d.Name
	}
}

func formatExtraction(extractions []Extraction) coordinator.Formatter {
	return func(s coordinator.Slot) string {
		e := extractions[s.Index]
		return fmt.Sprintf("%s => %s", e.Name, e.Label)
	}
}

func formatStep(steps []Step) coordinator.Formatter {
	return func(s coordinator.Slot) string {
		step := steps[s.Index]
		label := step.Name + " | " + step.Action
		if res, ok := s.Result.(string); ok && res != "" {
			return label + " => " + res
		}
		if s.HasProgress && !s.Settled {
			return fmt.Sprintf("%s => %v", label, s.Progress)
		}
		return label
	}
}

func formatScript(scripts []ScriptFile) coordinator.Formatter {
	return func(s coordinator.Slot) string {
		sc := scripts[s.Index]
		return fmt.Sprintf("%s => %s", sc.Name, sc.Filename)
	}
}

func formatClone(clones []Clone) coordinator.Formatter {
	return func(s coordinator.Slot) string {
		return clones[s.Index].URL
	}
}
