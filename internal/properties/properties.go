package properties

import (
	"os"
	"path/filepath"
)

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

// ReportsDir is where per-run artifact folders are written.
func ReportsDir() string {
	if dir := os.Getenv("REPORTS_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(RootPath(), "data", "reports")
}

// HistoryBackend selects the history store: "folders" (default), "index"
// or "memory".
func HistoryBackend() string {
	if backend := os.Getenv("HISTORY_BACKEND"); backend != "" {
		return backend
	}
	return "folders"
}

// ClampBounds reports whether sanitization drops values outside [-1, 1].
// On unless NDVI_CLAMP=false is set, for parity with sources that only
// substitute the nodata sentinel.
func ClampBounds() bool {
	return os.Getenv("NDVI_CLAMP") != "false"
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}
func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}
