// Package filesystem holds the afero backend every file access goes through.
package filesystem

import "github.com/spf13/afero"

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active backend.
func API() afero.Afero {
	return backend
}

// Set replaces the backend.
func Set(fs afero.Fs) {
	backend = afero.Afero{Fs: fs}
}

// SetOsFs restores the operating system backend.
func SetOsFs() {
	Set(afero.NewOsFs())
}

// SetMemMapFs switches to an empty in-memory backend. Tests use it to keep the real
// config and cache directories untouched.
func SetMemMapFs() {
	Set(afero.NewMemMapFs())
}
