package engine

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/daryltucker/rorb-fews/internal/output"
	"github.com/daryltucker/rorb-fews/internal/pi"
)

// BatchScript returns the Windows launch script FEWS can call in place of
// the launch step. Lines end in CRLF.
func BatchScript(modelDir, exe, par string) string {
	lines := []string{
		"@echo off",
		"set model_folder=" + modelDir,
		"cd /d %model_folder%",
		exe + " " + par,
	}
	return strings.Join(lines, "\r\n") + "\r\n"
}

// exe is the engine executable: the run info property wins over config.
func (e *Engine) exe(s *session) string {
	if exe, ok := s.run.Property(pi.PropRORBExe); ok && exe != "" {
		return exe
	}
	return e.Config.Exe
}

// Launch runs the RORB executable on the rendered parameter file inside
// the model folder, bounded by the configured timeout.
func (e *Engine) Launch(ctx context.Context, runInfoPath string) error {
	s, err := e.open(runInfoPath)
	if err != nil {
		return err
	}
	exe, par := e.exe(s), s.layout.Path(e.Config.Files.Par)

	timeout := e.Config.ExeTimeout
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, exe, par)
	cmd.Dir = s.modelDir
	output.Logger.Info("Launching engine", "exe", exe, "par", par, "dir", s.modelDir, "timeout", timeout)

	start := time.Now()
	out, err := cmd.CombinedOutput()
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		output.Logger.Debug("engine", "line", sc.Text())
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("engine %s timed out after %s", exe, timeout)
	}
	if err != nil {
		return fmt.Errorf("engine %s failed: %w", exe, err)
	}
	output.Logger.Info("Engine finished", "exe", exe, "duration", time.Since(start).Round(time.Millisecond))
	return nil
}
