/*
Package config loads eventstudio settings from YAML, JSON and the environment.

# Overview

Config wraps a map[string]any and provides typed accessors that fall back
to a default on missing keys or mismatched types. Keys are dotted paths
into nested maps, so "audit.driver" reads the driver field of an audit
section.

Settings is the typed view used to build a Studio:

	settings, err := config.Load("eventstudio.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	studio := eventstudio.New(settings.Options(logger)...)

# Keys

	max_queue_size   replay queue capacity per event type, 0 for unbounded
	hidden_station   name of the default station
	log_level        debug, info, warn or error
	metrics          enable OpenTelemetry metrics
	tracing          enable OpenTelemetry tracing
	audit.driver     none, memory or sqlite
	audit.path       sqlite database file

Every key can be overridden by an environment variable named after it,
EVENTSTUDIO_ followed by the upper-cased key with dots replaced by
underscores (EVENTSTUDIO_MAX_QUEUE_SIZE, EVENTSTUDIO_AUDIT_PATH).

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
