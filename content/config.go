package content

import "time"

// Config holds tuning for the content pipeline.
type Config struct {
	// Workers is the size of the worker pool handling CPU decode steps.
	Workers int `mapstructure:"workers" default:"4"`
	// QueueDepth is the buffer size of each affinity queue.
	QueueDepth int `mapstructure:"queue_depth" default:"256"`
	// DependencyPollMS is how long a loader waiting for a dependency is
	// parked before its next file I/O poll, in milliseconds.
	DependencyPollMS int `mapstructure:"dependency_poll_ms" default:"20"`
	// Watch enables the fsnotify change notifier for hot reload.
	Watch bool `mapstructure:"watch" default:"false"`
	// WatchRoot is the directory the change notifier observes.
	WatchRoot string `mapstructure:"watch_root" default:"content"`
}

func (c Config) dependencyPoll() time.Duration {
	if c.DependencyPollMS <= 0 {
		return 20 * time.Millisecond
	}
	return time.Duration(c.DependencyPollMS) * time.Millisecond
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return 1
	}
	return c.Workers
}

func (c Config) queueDepth() int {
	if c.QueueDepth <= 0 {
		return 64
	}
	return c.QueueDepth
}
