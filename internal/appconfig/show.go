package appconfig

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ShowConfig prints the effective configuration as YAML.
func ShowConfig(out io.Writer, file string, cfg *Config) error {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	effective := Defaults()
	if cfg != nil {
		effective = *cfg
	}

	fmt.Fprintln(out, "Current configuration:")
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(effective); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	fmt.Fprintf(out, "# resolved request timeout: %s\n", effective.RequestTimeout())
	fmt.Fprintf(out, "# resolved log file: %s\n", effective.LogFilePath())
	return nil
}
