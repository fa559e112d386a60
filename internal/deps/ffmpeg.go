package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveFFprobe returns the ffprobe that pairs with ffmpegCommand.
//
// An explicit path in ffprobeCommand always wins. A bare command name is
// matched against a sibling of the resolved ffmpeg binary first so custom
// ffmpeg builds are probed with their own ffprobe, and falls back to PATH.
func ResolveFFprobe(ffmpegCommand, ffprobeCommand string) string {
	probe := strings.TrimSpace(ffprobeCommand)
	if probe == "" {
		probe = "ffprobe"
	}
	if strings.ContainsRune(probe, filepath.Separator) {
		return probe
	}
	ffmpegBinary := strings.TrimSpace(ffmpegCommand)
	if ffmpegBinary == "" {
		return probe
	}
	resolved, err := exec.LookPath(ffmpegBinary)
	if err != nil {
		return probe
	}
	candidate := filepath.Join(filepath.Dir(resolved), executableName(probe))
	if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
		return candidate
	}
	return probe
}

func executableName(base string) string {
	if runtime.GOOS == "windows" && !strings.HasSuffix(base, ".exe") {
		return base + ".exe"
	}
	return base
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
