package graphcap

import (
	"log/slog"
	"plugin"
)

// LoadLibrary opens a plugin library by path. Load failures are logged
// to the diagnostic stream and returned as a device error; a missing
// optional plugin is not fatal to the process.
func LoadLibrary(path string) (*plugin.Plugin, error) {
	p, err := plugin.Open(path)
	if err != nil {
		slog.Error("could not load plugin library", "path", path, "err", err)
		return nil, NewDeviceError("LoadLibrary", "could not load plugin library "+path, err)
	}
	return p, nil
}
