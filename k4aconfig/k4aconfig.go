/*Package k4aconfig loads the connection settings used to open a depth-MCU
USB connection from an optional YAML file, layered over built-in defaults.
*/
package k4aconfig

import (
	"errors"
	"io/fs"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
)

// Config holds the settings needed to open a connection to the depth
// processor over USB.
type Config struct {
	// DeviceIndex selects which matching VID/PID device to open, in
	// enumeration order, when more than one is attached.
	DeviceIndex int `yaml:"DeviceIndex"`

	// TimeoutMillis bounds every individual bulk transfer.
	TimeoutMillis int `yaml:"TimeoutMillis"`
}

// Timeout returns the configured transfer timeout as a time.Duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMillis) * time.Millisecond
}

// Defaults returns the built-in configuration used when no file is present
// and no key is overridden.
func Defaults() Config {
	return Config{
		DeviceIndex:   0,
		TimeoutMillis: 2000,
	}
}

// Load reads path as a YAML file and overlays it on Defaults(). A missing
// file is not an error: Defaults() alone is returned. Any other read or
// parse error is returned to the caller.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "yaml"), nil); err != nil {
		return Config{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
