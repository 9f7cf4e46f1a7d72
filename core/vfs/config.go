package vfs

// Config holds configuration for the content file systems.
type Config struct {
	// Root is the local directory cooked content is read from.
	Root string `mapstructure:"root" default:"content"`
	// SourceRoot is the local directory source assets are cooked from.
	SourceRoot string `mapstructure:"source_root" default:"source"`
	// CacheDir is where network retrieved content is stored.
	CacheDir string `mapstructure:"cache_dir" default:".cache/content"`
	// Network holds configuration for the remote content bucket.
	Network NetworkConfig `mapstructure:"network"`
}

// NetworkConfig holds configuration for the remote object storage serving
// network content.
type NetworkConfig struct {
	// Enabled switches remote content retrieval on.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the name of the bucket content is served from.
	Bucket string `mapstructure:"bucket" default:"content"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
