package config

import (
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles. Defaults can be overridden by the
// features section of the YAML file and then by FEATURE_* variables.
type FeatureFlags struct {
	mu       sync.RWMutex
	features map[string]*Feature
	now      func() time.Time
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time
}

// Predefined feature flag names.
const (
	// FeatureTutor enables the AI tutor.
	FeatureTutor = "tutor.enabled"

	// FeatureDailyRollover resets today's study time when the day changes.
	// Off by default: the stored counter accumulates until reset elsewhere.
	FeatureDailyRollover = "session.daily_rollover"

	// FeatureDashboardCache memoizes the dashboard per store revision.
	FeatureDashboardCache = "dashboard.cache"

	// FeatureSaveRetry retries failed saves on networked backends.
	FeatureSaveRetry = "storage.save_retry"
)

// LoadFeatureFlags creates flags with defaults, then applies overrides and
// the environment.
func LoadFeatureFlags(overrides map[string]bool) *FeatureFlags {
	ff := &FeatureFlags{
		features: make(map[string]*Feature),
		now:      time.Now,
	}
	ff.initializeDefaults()
	for name, enabled := range overrides {
		if f, ok := ff.features[name]; ok {
			f.Enabled = enabled
		}
	}
	ff.loadFromEnvironment()
	return ff
}

func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureTutor] = &Feature{
		Name:        FeatureTutor,
		Description: "AI tutor chat backed by Gemini",
		Enabled:     true,
	}
	ff.features[FeatureDailyRollover] = &Feature{
		Name:        FeatureDailyRollover,
		Description: "Reset today's study seconds on the first action of a new day",
		Enabled:     false,
	}
	ff.features[FeatureDashboardCache] = &Feature{
		Name:        FeatureDashboardCache,
		Description: "Memoize dashboard statistics per document revision",
		Enabled:     true,
	}
	ff.features[FeatureSaveRetry] = &Feature{
		Name:        FeatureSaveRetry,
		Description: "Retry saves on postgres and redis backends",
		Enabled:     true,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false
// Example: FEATURE_SESSION_DAILY_ROLLOVER=true
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		if val := os.Getenv(featureNameToEnvKey(name)); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
			}
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "session.daily_rollover" -> "FEATURE_SESSION_DAILY_ROLLOVER"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled reports whether the feature is on. Unknown names are off.
func (ff *FeatureFlags) IsEnabled(featureName string) bool {
	if ff == nil {
		return false
	}
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	feature, ok := ff.features[featureName]
	if !ok || !feature.Enabled {
		return false
	}

	now := ff.now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}
	return true
}

// EnableFeature turns a feature on.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.set(featureName, true)
}

// DisableFeature turns a feature off.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.set(featureName, false)
}

func (ff *FeatureFlags) set(featureName string, enabled bool) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}
	feature.Enabled = enabled
	return nil
}

// Names returns the known feature names, sorted.
func (ff *FeatureFlags) Names() []string {
	ff.mu.RLock()
	defer ff.mu.RUnlock()
	return slices.Sorted(maps.Keys(ff.features))
}

// GetAllFeatures returns a copy of all features.
func (ff *FeatureFlags) GetAllFeatures() map[string]Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	out := make(map[string]Feature, len(ff.features))
	for name, f := range ff.features {
		out[name] = *f
	}
	return out
}

// TutorEnabled reports whether the AI tutor may be used.
func (ff *FeatureFlags) TutorEnabled() bool { return ff.IsEnabled(FeatureTutor) }

// DailyRolloverEnabled reports whether today's study time resets daily.
func (ff *FeatureFlags) DailyRolloverEnabled() bool { return ff.IsEnabled(FeatureDailyRollover) }

// --- Errors ---

var (
	ErrFeatureNotFound = &FeatureFlagError{Message: "feature not found"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
