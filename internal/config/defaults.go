package config

const (
	DefaultListenAddr  = "127.0.0.1:8080"
	DefaultRedisStream = "postfilter:decisions"
)

// DefaultLogDir returns the default decision log directory path.
func DefaultLogDir() string {
	return "~/.postfilter/logs"
}
