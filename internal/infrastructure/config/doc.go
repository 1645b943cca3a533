// Package config loads and validates the colo planner configuration.
//
// Values are layered: built-in defaults, then the YAML file, then
// COLOPLANNER_SECTION_KEY environment variables. Credentials such as the
// MQTT password and the InfluxDB token belong in the environment rather
// than the file.
//
// Usage:
//
//	cfg, err := config.Load(config.Path())
//	if err != nil {
//	    return err
//	}
//	frame := cfg.Layout.BaseFrame()
package config
