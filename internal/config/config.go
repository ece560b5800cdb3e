package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// EnvPrefix scopes the environment variables read by Load, e.g. CARE_HTTP_PORT -> http.port.
const EnvPrefix = "CARE_"

// Push providers.
const (
	ProviderFCM  = "fcm"
	ProviderLINE = "line"
	ProviderLog  = "log"
)

type Config struct {
	Env string `koanf:"env"`
	Log Log    `koanf:"log"`

	HTTP struct {
		Port         int           `koanf:"port"`
		ReadTimeout  time.Duration `koanf:"readTimeout"`
		WriteTimeout time.Duration `koanf:"writeTimeout"`
		IdleTimeout  time.Duration `koanf:"idleTimeout"`
	} `koanf:"http"`

	Database struct {
		Path          string        `koanf:"path"`
		Debug         bool          `koanf:"debug"`
		SlowThreshold time.Duration `koanf:"slowThreshold"`
	} `koanf:"database"`

	Push PushConfig `koanf:"push"`

	Firebase struct {
		CredentialsPath string `koanf:"credentialsPath"`
	} `koanf:"firebase"`

	LINE struct {
		ChannelSecret string `koanf:"channelSecret"`
		ChannelToken  string `koanf:"channelToken"`
	} `koanf:"line"`

	Housekeeping struct {
		Schedule  string        `koanf:"schedule"`
		Retention time.Duration `koanf:"retention"`
	} `koanf:"housekeeping"`
}

type Log struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

// PushConfig controls delivery through the push gateway.
type PushConfig struct {
	Provider        string        `koanf:"provider"`
	Timeout         time.Duration `koanf:"timeout"`
	RatePerSecond   float64       `koanf:"ratePerSecond"`
	Burst           int           `koanf:"burst"`
	DisplayTimezone string        `koanf:"displayTimezone"`
}

// keySkeleton lists every key so env overrides align with camelCase names
// even when no yaml file provides them.
var keySkeleton = map[string]any{
	"env": nil,
	"log": map[string]any{"level": nil, "pretty": nil},
	"http": map[string]any{
		"port": nil, "readTimeout": nil, "writeTimeout": nil, "idleTimeout": nil,
	},
	"database": map[string]any{"path": nil, "debug": nil, "slowThreshold": nil},
	"push": map[string]any{
		"provider": nil, "timeout": nil, "ratePerSecond": nil, "burst": nil, "displayTimezone": nil,
	},
	"firebase":     map[string]any{"credentialsPath": nil},
	"line":         map[string]any{"channelSecret": nil, "channelToken": nil},
	"housekeeping": map[string]any{"schedule": nil, "retention": nil},
}

// Load reads config.yaml from the first search path containing it (optional), overlays
// CARE_* environment variables and fills defaults.
func Load(searchPaths ...string) (*Config, error) {
	if len(searchPaths) == 0 {
		searchPaths = []string{".", "config", "../config", "../../config"}
	}
	k := koanf.New(".")

	for _, dir := range searchPaths {
		candidate := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if err := k.Load(file.Provider(candidate), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", candidate)
		}
		break
	}

	existing := mergeKeys(keySkeleton, k.Raw())
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return canonicalizeEnvKey(strings.TrimPrefix(key, EnvPrefix), existing), value
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	cfg := new(Config)
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrap(err, "unmarshal config failed")
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 30 * time.Second
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = time.Minute
	}
	if c.Database.Path == "" {
		c.Database.Path = "carereminder.db"
	}
	if c.Database.SlowThreshold == 0 {
		c.Database.SlowThreshold = 200 * time.Millisecond
	}
	if c.Push.Provider == "" {
		c.Push.Provider = ProviderLog
	}
	if c.Push.Timeout == 0 {
		c.Push.Timeout = 10 * time.Second
	}
	if c.Push.RatePerSecond == 0 {
		c.Push.RatePerSecond = 50
	}
	if c.Push.Burst == 0 {
		c.Push.Burst = 10
	}
	if c.Push.DisplayTimezone == "" {
		c.Push.DisplayTimezone = "UTC"
	}
	if c.Housekeeping.Schedule == "" {
		c.Housekeeping.Schedule = "0 30 3 * * *"
	}
	if c.Housekeeping.Retention == 0 {
		c.Housekeeping.Retention = 30 * 24 * time.Hour
	}
}

// Validate checks provider-specific requirements.
func (c *Config) Validate() error {
	switch c.Push.Provider {
	case ProviderFCM:
		if c.Firebase.CredentialsPath == "" {
			return errors.New("firebase.credentialsPath is required for the fcm push provider")
		}
	case ProviderLINE:
		if c.LINE.ChannelSecret == "" || c.LINE.ChannelToken == "" {
			return errors.New("line.channelSecret and line.channelToken are required for the line push provider")
		}
	case ProviderLog:
	default:
		return errors.Errorf("unknown push provider: %s", c.Push.Provider)
	}
	if c.Push.Timeout < 0 {
		return errors.New("push.timeout must be positive")
	}
	if _, err := time.LoadLocation(c.Push.DisplayTimezone); err != nil {
		return errors.Wrapf(err, "push.displayTimezone %q", c.Push.DisplayTimezone)
	}
	return nil
}

// DisplayLocation returns the zone used to format dates in notification bodies.
func (c *Config) DisplayLocation() *time.Location {
	loc, err := time.LoadLocation(c.Push.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func mergeKeys(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		if child, ok := v.(map[string]any); ok {
			if prev, ok := out[k].(map[string]any); ok {
				out[k] = mergeKeys(prev, child)
				continue
			}
		}
		out[k] = v
	}
	return out
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
