package session

import (
	"os"
	"path/filepath"
)

// EnvHome relocates the pairchat base directory.
const EnvHome = "PAIRCHAT_HOME"

// BaseDir returns $PAIRCHAT_HOME or ~/.pairchat.
func BaseDir() string {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".pairchat")
}

// Dir returns the session-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "sessions", name)
}

// TokenPath returns where the login token of a session is kept.
func TokenPath(name string) string {
	return filepath.Join(Dir(name), "token")
}

// SocketPath returns the default daemon socket.
func SocketPath() string {
	return filepath.Join(BaseDir(), "pairchatd.sock")
}

// LogPath returns the daemon log file path inside dataDir.
func LogPath(dataDir string) string {
	return filepath.Join(dataDir, "logs", "pairchatd.log")
}

// DBPath returns the daemon database path inside dataDir.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, "pairchat.db")
}

// BlobDir returns the blob root inside dataDir.
func BlobDir(dataDir string) string {
	return filepath.Join(dataDir, "blobs")
}

// ConfigPath returns the client config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// DaemonConfigPath returns the daemon config file path.
func DaemonConfigPath() string {
	return filepath.Join(BaseDir(), "pairchatd.toml")
}

// EnvPath returns the optional .env file next to the config files.
func EnvPath() string {
	return filepath.Join(BaseDir(), ".env")
}

// EnsureDir creates the session directory with proper permissions.
func EnsureDir(name string) error {
	return os.MkdirAll(Dir(name), 0700)
}
