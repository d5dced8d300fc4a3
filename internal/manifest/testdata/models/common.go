package models

import "time"

// Timestamps is embedded by models that track changes.
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Config is not a model.
type Config struct {
	Debug bool
}

func (c Config) Enabled() bool { return c.Debug }
