package config

import (
	"reflect"
	"slices"
)

// ConfigDiff describes what changed between two configs. The hot-reloadable
// fields carry their new values; everything else collapses into
// RestartRequired.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// BoostsChanged is set when the phrase boost list changed; NewBoosts is
	// pushed to the live recognition session.
	BoostsChanged bool
	NewBoosts     []BoostGroup

	// ThresholdsChanged is set when either correction threshold changed.
	ThresholdsChanged bool
	NewTrusted        float64
	NewCautious       float64

	// RestartRequired is set when fields outside the hot-reloadable set
	// differ. The running process keeps its old values for those.
	RestartRequired bool
}

// Empty reports whether the two configs were semantically identical.
func (d ConfigDiff) Empty() bool {
	return !d.LogLevelChanged && !d.BoostsChanged && !d.ThresholdsChanged && !d.RestartRequired
}

// Fields names the hot-reloadable field groups that changed. Used for the
// reload log line, which deliberately carries names, never values.
func (d ConfigDiff) Fields() []string {
	var fields []string
	if d.LogLevelChanged {
		fields = append(fields, "server.log_level")
	}
	if d.ThresholdsChanged {
		fields = append(fields, "correction.thresholds")
	}
	if d.BoostsChanged {
		fields = append(fields, "phrase_boosts")
	}
	return fields
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	// Log level
	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	// Correction thresholds
	if old.Correction.TrustedThreshold != new.Correction.TrustedThreshold ||
		old.Correction.CautiousThreshold != new.Correction.CautiousThreshold {
		d.ThresholdsChanged = true
		d.NewTrusted = new.Correction.TrustedThreshold
		d.NewCautious = new.Correction.CautiousThreshold
	}

	// Phrase boosts
	if !boostsEqual(old.Boosts, new.Boosts) {
		d.BoostsChanged = true
		d.NewBoosts = new.Boosts
	}

	d.RestartRequired = restartRequired(old, new)
	return d
}

// restartRequired reports whether the configs differ outside the
// hot-reloadable fields. Both are compared with those fields zeroed on
// value copies.
func restartRequired(old, new *Config) bool {
	o, n := *old, *new
	o.Server.LogLevel, n.Server.LogLevel = "", ""
	o.Correction.TrustedThreshold, n.Correction.TrustedThreshold = 0, 0
	o.Correction.CautiousThreshold, n.Correction.CautiousThreshold = 0, 0
	o.Boosts, n.Boosts = nil, nil
	return !reflect.DeepEqual(o, n)
}

func boostsEqual(a, b []BoostGroup) bool {
	return slices.EqualFunc(a, b, func(x, y BoostGroup) bool {
		return x.Boost == y.Boost && slices.Equal(x.Phrases, y.Phrases)
	})
}
