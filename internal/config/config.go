// Package config resolves the immutable run parameters of a summary run.
//
// Every setting is looked up, in order, in the side-file, the environment
// and the built-in defaults. The first value that parses wins; values that
// do not parse are treated as absent. Resolution never fails.
package config

import (
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Keys recognized in the side-file and the environment.
const (
	KeyEndpoint    = "AI_SUMMARY_API"
	KeyAPIKey      = "AI_SUMMARY_KEY"
	KeyWordLimit   = "AI_SUMMARY_WORD_LIMIT"
	KeyMaxLength   = "AI_SUMMARY_MAX_LENGTH"
	KeyConcurrency = "AI_SUMMARY_CONCURRENCY"
	KeyLogLevel    = "AI_SUMMARY_LOG_LEVEL"
	KeyOverwrite   = "AI_SUMMARY_OVERWRITE"
	KeySanitize    = "AI_SUMMARY_SANITIZE"
)

// SideFileName is the default side-file looked up in the working directory.
const SideFileName = ".summaryrc"

// DotEnvName is the dotenv file that backs the environment layer.
const DotEnvName = ".env"

// Defaults.
const (
	DefaultWordLimit   = 8000
	DefaultMaxLength   = 120
	DefaultConcurrency = 3
	MinConcurrency     = 1
	MaxConcurrency     = 5
)

// LogLevel selects which log records are emitted.
type LogLevel int

// Log levels, numbered as they are written in configuration (0, 1, 2).
const (
	LevelError LogLevel = iota
	LevelInfo
	LevelDebug
)

func (l LogLevel) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelDebug:
		return "debug"
	default:
		return "info"
	}
}

// Policy controls whether an existing summary may be replaced.
type Policy string

// Overwrite policies.
const (
	PolicyAsk    Policy = "ask"
	PolicyAlways Policy = "always"
	PolicyNever  Policy = "never"
)

// RunConfig is the resolved, immutable configuration of one run.
// It is passed by value; nothing mutates it after [Resolve] returns.
type RunConfig struct {
	Endpoint      string   // Summary endpoint URL; empty means local generation only.
	APIKey        string   // Credential for the endpoint; may be empty.
	WordLimit     int      // Maximum body runes submitted to the endpoint.
	SummaryMaxLen int      // Maximum runes of the written summary.
	Concurrency   int      // Worker count, within [MinConcurrency, MaxConcurrency].
	LogLevel      LogLevel // Verbosity of the log stream.
	Overwrite     Policy   // What to do with documents that already have a summary.
	Sanitize      bool     // Strip markup from the body before submission.
}

// Default returns the configuration used when no source sets a key.
func Default() RunConfig {
	return RunConfig{
		WordLimit:     DefaultWordLimit,
		SummaryMaxLen: DefaultMaxLength,
		Concurrency:   DefaultConcurrency,
		LogLevel:      LevelInfo,
		Overwrite:     PolicyNever,
		Sanitize:      true,
	}
}

// Source names where a resolved value came from.
type Source string

// Sources of a resolved value.
const (
	SourceSideFile Source = "side-file"
	SourceEnv      Source = "env"
	SourceDefault  Source = "default"
	SourceForced   Source = "forced"
)

// Sources tracks which files were read and where each key was resolved.
type Sources struct {
	SideFile string            // Path to the side-file if it was read, empty otherwise.
	DotEnv   string            // Path to the .env file if it was read, empty otherwise.
	Keys     map[string]Source // Resolution source per key.
}

// Input holds the inputs for [Resolve].
type Input struct {
	WorkDir  string            // Directory holding the default side-file and .env.
	SideFile string            // Explicit side-file path; empty means WorkDir/.summaryrc.
	Env      map[string]string // Process environment.
}

// lookup returns the raw value of key from one source.
type lookup func(key string) (string, bool)

type layer struct {
	source Source
	get    lookup
}

// setting parses one key into cfg. It reports false when raw is unusable,
// which makes the resolver fall through to the next source.
type setting struct {
	key   string
	apply func(cfg *RunConfig, raw string) bool
}

var settings = []setting{
	{KeyEndpoint, applyEndpoint},
	{KeyAPIKey, applyAPIKey},
	{KeyWordLimit, applyWordLimit},
	{KeyMaxLength, applyMaxLength},
	{KeyConcurrency, applyConcurrency},
	{KeyLogLevel, applyLogLevel},
	{KeyOverwrite, applyOverwrite},
	{KeySanitize, applySanitize},
}

// KnownKeys returns the recognized configuration keys in resolution order.
func KnownKeys() []string {
	keys := make([]string, 0, len(settings))
	for _, s := range settings {
		keys = append(keys, s.key)
	}

	return keys
}

func isKnownKey(key string) bool {
	for _, s := range settings {
		if s.key == key {
			return true
		}
	}

	return false
}

// Resolve builds the [RunConfig] for a run.
//
// Precedence per key (first usable value wins):
// 1. Side-file (commented KEY: value pairs, then JSONC members)
// 2. Environment (process environment, then WorkDir/.env)
// 3. Defaults
//
// When the overwrite policy is ask, concurrency is forced to 1 so prompts
// never interleave.
func Resolve(in Input) (RunConfig, Sources) {
	sources := Sources{Keys: make(map[string]Source, len(settings))}

	sidePath := in.SideFile
	if sidePath == "" {
		sidePath = SideFileName
	}

	if !filepath.IsAbs(sidePath) && in.WorkDir != "" {
		sidePath = filepath.Join(in.WorkDir, sidePath)
	}

	side, loaded := readSideFile(sidePath)
	if loaded {
		sources.SideFile = sidePath
	}

	dotEnvPath := filepath.Join(in.WorkDir, DotEnvName)

	dotEnv, err := godotenv.Read(dotEnvPath)
	if err == nil {
		sources.DotEnv = dotEnvPath
	}

	// Each layer is tried on its own, so an unusable comment pair still lets
	// the JSONC member for the same key apply.
	layers := []layer{
		{source: SourceSideFile, get: mapLookup(side.comments)},
		{source: SourceSideFile, get: mapLookup(side.members)},
		{source: SourceEnv, get: mapLookup(in.Env)},
		{source: SourceEnv, get: mapLookup(dotEnv)},
	}

	cfg := Default()

	for _, s := range settings {
		sources.Keys[s.key] = SourceDefault

		for _, l := range layers {
			raw, ok := l.get(s.key)
			if !ok || strings.TrimSpace(raw) == "" {
				continue
			}

			if s.apply(&cfg, strings.TrimSpace(raw)) {
				sources.Keys[s.key] = l.source

				break
			}
		}
	}

	if cfg.Overwrite == PolicyAsk && cfg.Concurrency > 1 {
		cfg.Concurrency = 1
		sources.Keys[KeyConcurrency] = SourceForced
	}

	return cfg, sources
}

func mapLookup(values map[string]string) lookup {
	return func(key string) (string, bool) {
		v, ok := values[key]

		return v, ok
	}
}

func applyEndpoint(cfg *RunConfig, raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}

	cfg.Endpoint = raw

	return true
}

func applyAPIKey(cfg *RunConfig, raw string) bool {
	cfg.APIKey = raw

	return true
}

func applyWordLimit(cfg *RunConfig, raw string) bool {
	n, ok := parsePositive(raw)
	if !ok {
		return false
	}

	cfg.WordLimit = n

	return true
}

func applyMaxLength(cfg *RunConfig, raw string) bool {
	n, ok := parsePositive(raw)
	if !ok || n < 2 {
		return false
	}

	cfg.SummaryMaxLen = n

	return true
}

func applyConcurrency(cfg *RunConfig, raw string) bool {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return false
	}

	cfg.Concurrency = min(max(n, MinConcurrency), MaxConcurrency)

	return true
}

func applyLogLevel(cfg *RunConfig, raw string) bool {
	switch strings.ToLower(raw) {
	case "0", "error":
		cfg.LogLevel = LevelError
	case "1", "info":
		cfg.LogLevel = LevelInfo
	case "2", "debug":
		cfg.LogLevel = LevelDebug
	default:
		return false
	}

	return true
}

func applyOverwrite(cfg *RunConfig, raw string) bool {
	switch p := Policy(strings.ToLower(raw)); p {
	case PolicyAsk, PolicyAlways, PolicyNever:
		cfg.Overwrite = p

		return true
	default:
		return false
	}
}

func applySanitize(cfg *RunConfig, raw string) bool {
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "on":
		cfg.Sanitize = true
	case "0", "false", "no", "off":
		cfg.Sanitize = false
	default:
		return false
	}

	return true
}

func parsePositive(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}

	return n, true
}

// Entry is one resolved key for display.
type Entry struct {
	Key    string
	Value  string
	Source Source
}

// Entries lists the resolved values in key order. The API key is masked.
func (c RunConfig) Entries(sources Sources) []Entry {
	values := map[string]string{
		KeyEndpoint:    c.Endpoint,
		KeyAPIKey:      maskSecret(c.APIKey),
		KeyWordLimit:   strconv.Itoa(c.WordLimit),
		KeyMaxLength:   strconv.Itoa(c.SummaryMaxLen),
		KeyConcurrency: strconv.Itoa(c.Concurrency),
		KeyLogLevel:    c.LogLevel.String(),
		KeyOverwrite:   string(c.Overwrite),
		KeySanitize:    strconv.FormatBool(c.Sanitize),
	}

	entries := make([]Entry, 0, len(settings))
	for _, s := range settings {
		src := sources.Keys[s.key]
		if src == "" {
			src = SourceDefault
		}

		entries = append(entries, Entry{Key: s.key, Value: values[s.key], Source: src})
	}

	return entries
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= 4 {
		return "****"
	}

	return "****" + string(runes[len(runes)-4:])
}
