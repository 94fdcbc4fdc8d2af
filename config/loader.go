package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/streamkit/streamkit/logger"
	"github.com/streamkit/streamkit/util"
)

// EnvPrefix guards which environment variables may override file values.
// STREAMKIT_LOGGING_LEVEL overrides logging.level, and so on.
const EnvPrefix = "STREAMKIT_"

// FileSystem abstracts the file probes the loader performs so tests can run
// against a fake tree.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

type osFS struct{}

func (osFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (osFS) LoadEnv(path string) error { return godotenv.Load(path) }

// LoaderConfig carries the loader's dependencies and optional explicit file
// paths. Explicit paths skip the search entirely.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption customizes LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem substitutes the file probes, usually with a test fake.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile pins the YAML config file instead of searching for one.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile pins the .env file instead of searching for one.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Resolver locates the config and .env files for a named application.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles is the outcome of a search. Either path may be empty when
// nothing was found and no explicit override was given.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles passes explicit paths from opts through untouched and searches
// the conventional locations for whichever is missing.
func (r *Resolver) ResolveFiles(appName string, opts LoaderConfig) ResolvedFiles {
	files := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = r.firstExisting(configCandidates(appName))
	}
	if files.EnvFile == "" {
		files.EnvFile = r.firstExisting(envCandidates(appName))
	}
	return files
}

func (r *Resolver) firstExisting(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// searchRoots are the directory prefixes probed for every candidate, covering
// invocation from the repo root and from one or two levels below it.
var searchRoots = []string{".", "..", "../.."}

// nameForms returns the app name plus its suffix after the last dash, so
// "streamkit-runner" also matches a cmd/runner layout.
func nameForms(appName string) []string {
	forms := []string{appName}
	if i := strings.LastIndex(appName, "-"); i >= 0 && i+1 < len(appName) {
		forms = append(forms, appName[i+1:])
	}
	return util.Unique(forms)
}

func configCandidates(appName string) []string {
	var paths []string
	for _, root := range searchRoots {
		for _, name := range nameForms(appName) {
			paths = append(paths, root+"/cmd/"+name+"/config.yml")
		}
	}
	return append(paths, "./config/config.yml", "../config/config.yml", "./config.yml")
}

// envCandidates lists .env probes. An app-specific .env.<name> anywhere beats
// a generic .env, and for each file name the nearest directory wins.
func envCandidates(appName string) []string {
	names := nameForms(appName)

	var dirs []string
	for _, name := range names {
		dirs = append(dirs, "cmd/"+name, "config/"+name)
	}
	dirs = append(dirs, "config", "")

	var paths []string
	for _, file := range []string{".env." + appName, ".env"} {
		for _, dir := range dirs {
			for _, root := range searchRoots {
				if dir == "" {
					paths = append(paths, root+"/"+file)
				} else {
					paths = append(paths, root+"/"+dir+"/"+file)
				}
			}
		}
	}
	return paths
}

// LoadConfig populates cfg for the named application. Values come from three
// layers, later ones winning: a YAML config file, a .env file, and prefixed
// process environment variables.
func LoadConfig(appName string, cfg any, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = osFS{}
	}

	r := &Resolver{FileSystem: lc.FileSystem}
	return loadResolved(appName, cfg, r.ResolveFiles(appName, lc), lc.FileSystem)
}

func loadResolved(appName string, cfg any, files ResolvedFiles, fs FileSystem) error {
	log := logger.Get("config")
	v := viper.New()

	if files.ConfigFile != "" && fs.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			log.Warn("config file unreadable, continuing without it", logger.Fields(
				"path", files.ConfigFile, logger.FieldError, err.Error()))
		}
	}

	v.AutomaticEnv()
	bindPrefixedEnv(v)

	if files.EnvFile != "" && fs.Exists(files.EnvFile) {
		if err := fs.LoadEnv(files.EnvFile); err != nil {
			log.Warn(".env file unreadable, continuing without it", logger.Fields(
				"path", files.EnvFile, logger.FieldError, err.Error()))
		} else {
			// pick up the variables the .env file just added
			bindPrefixedEnv(v)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config for %s: %w", appName, err)
	}
	return nil
}

// bindPrefixedEnv copies prefixed process environment variables into viper
// under every nested-key spelling they could address.
func bindPrefixedEnv(v *viper.Viper) {
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		for _, key := range generateEnvKeyVariants(strings.TrimPrefix(name, EnvPrefix)) {
			v.Set(key, value)
		}
	}
}

// generateEnvKeyVariants expands an uppercase env key into the nested viper
// keys it may stand for. Underscores are ambiguous: LOGGING_SERVICE_NAME can
// mean logging.service.name or logging.service_name, so every split point is
// offered and the config struct's mapstructure tags pick the match.
func generateEnvKeyVariants(envKey string) []string {
	words := strings.Split(strings.ToLower(envKey), "_")
	if len(words) <= 1 {
		return words
	}
	variants := make([]string, 0, len(words)+1)
	variants = append(variants, strings.Join(words, "_"), strings.Join(words, "."))
	for i := 1; i < len(words); i++ {
		variants = append(variants, strings.Join(words[:i], ".")+"."+strings.Join(words[i:], "_"))
	}
	return util.Unique(variants)
}
