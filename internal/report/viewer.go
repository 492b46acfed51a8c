// internal/report/viewer.go
package report

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	startCommand = func(name string, args ...string) error {
		return exec.Command(name, args...).Start()
	}
	kernelRelease = func() string {
		data, err := os.ReadFile("/proc/sys/kernel/osrelease")
		if err != nil {
			return ""
		}
		return string(data)
	}
)

// OpenInViewer opens path with the platform's default viewer. Under WSL the
// Windows shell is used through explorer.exe.
func OpenInViewer(path string) error {
	name, args, err := viewerCommand(path)
	if err != nil {
		return err
	}
	if err := startCommand(name, args...); err != nil {
		return fmt.Errorf("open %s with %s: %w", path, name, err)
	}
	return nil
}

func viewerCommand(path string) (string, []string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", nil, fmt.Errorf("resolve report path: %w", err)
	}
	if isWSL() {
		return "explorer.exe", []string{absPath}, nil
	}
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{absPath}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", absPath}, nil
	default:
		return "xdg-open", []string{"file://" + absPath}, nil
	}
}

func isWSL() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	return strings.Contains(strings.ToLower(kernelRelease()), "microsoft")
}
