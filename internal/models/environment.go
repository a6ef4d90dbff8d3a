package models

import "time"

// Environment is a named, package-manager-controlled working directory
// tracked by akari.
type Environment struct {
	Name             string    `toml:"-" json:"name"`
	WorkingDirectory string    `toml:"working_directory" json:"working_directory"`
	RemoteURL        string    `toml:"remote_url,omitempty" json:"remote_url,omitempty"`
	CreatedAt        time.Time `toml:"created_at" json:"created_at"`
}

// HasRemote reports whether a remote is bound to the environment.
func (e *Environment) HasRemote() bool {
	return e.RemoteURL != ""
}
