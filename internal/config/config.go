package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"gantry/internal/chart"
	appErrors "gantry/internal/errors"
	"gantry/internal/scale"
	"gantry/internal/swimlane"
)

const (
	KeyViewMode = "view-mode"

	KeyColumnWidth     = "chart.column-width"
	KeyBarHeight       = "chart.bar-height"
	KeyPadding         = "chart.padding"
	KeyHeaderHeight    = "chart.header-height"
	KeyDateFormat      = "chart.date-format"
	KeyLockResize      = "chart.lock-resize"
	KeyCreateTasks     = "chart.create-tasks"
	KeyDragSwimlanes   = "chart.drag-swimlanes"
	KeyResizeSwimlanes = "chart.resize-swimlanes"
	KeyResizeRows      = "chart.resize-rows"
	KeySwimlanes       = "chart.swimlanes"

	KeyStoreKind = "store.kind"
	KeyStorePath = "store.path"
	KeyStoreDSN  = "store.dsn"

	KeyOutputFormat = "output.format"
	KeyTheme        = "theme"
	KeyDebug        = "debug"
)

const (
	// DefaultStorePath is the task file used when nothing else is configured.
	DefaultStorePath = "tasks.yaml"
	// DirName is the per-user and per-project config directory.
	DirName   = ".gantry"
	envPrefix = "GANTRY"
)

type initSettings struct {
	workingDir        string
	projectConfigPath string
	userConfigPath    string
}

// Option configures Initialize behaviour. Useful for tests to override paths.
type Option func(*initSettings)

// WithWorkingDir overrides the directory used for project config discovery.
func WithWorkingDir(dir string) Option {
	return func(cfg *initSettings) {
		cfg.workingDir = dir
	}
}

// WithProjectConfig explicitly sets the project config path instead of discovery.
func WithProjectConfig(path string) Option {
	return func(cfg *initSettings) {
		cfg.projectConfigPath = path
	}
}

// WithUserConfig overrides the default user config path.
func WithUserConfig(path string) Option {
	return func(cfg *initSettings) {
		cfg.userConfigPath = path
	}
}

var (
	configOnce sync.Once
	configMu   sync.RWMutex
	configInst *viper.Viper
	initErr    error

	// writePathOverride is used by tests to redirect Save* calls.
	writePathOverride string
)

// Initialize loads configuration using the precedence:
// defaults < user config < project config < environment variables < overrides.
func Initialize(opts ...Option) error {
	configOnce.Do(func() {
		settings := initSettings{}
		for _, opt := range opts {
			opt(&settings)
		}
		initErr = configure(&settings)
	})
	return initErr
}

// ApplyOverrides injects values typically coming from CLI flags.
func ApplyOverrides(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	if err := Initialize(); err != nil {
		return err
	}
	configMu.Lock()
	defer configMu.Unlock()
	if configInst == nil {
		return fmt.Errorf("configuration not initialized")
	}
	for k, v := range overrides {
		configInst.Set(k, v)
	}
	return nil
}

// GetString fetches a string configuration value, initializing on demand.
func GetString(key string) string {
	v, err := getViper()
	if err != nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool fetches a bool configuration value, initializing on demand.
func GetBool(key string) bool {
	v, err := getViper()
	if err != nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt fetches an integer configuration value, initializing on demand.
func GetInt(key string) int {
	v, err := getViper()
	if err != nil {
		return 0
	}
	return v.GetInt(key)
}

// GetFloat fetches a float configuration value, initializing on demand.
func GetFloat(key string) float64 {
	v, err := getViper()
	if err != nil {
		return 0
	}
	return v.GetFloat64(key)
}

// Set updates a configuration key at runtime, initializing on demand.
func Set(key string, value any) error {
	if err := Initialize(); err != nil {
		return err
	}
	configMu.Lock()
	defer configMu.Unlock()
	if configInst == nil {
		return fmt.Errorf("configuration not initialized")
	}
	configInst.Set(key, value)
	return nil
}

// ChartOptions builds chart options from the chart.* keys and view-mode.
// An unknown view mode is a CodeInvalidOption error.
func ChartOptions() (chart.Options, error) {
	v, err := getViper()
	if err != nil {
		return chart.Options{}, err
	}
	configMu.RLock()
	defer configMu.RUnlock()

	mode, err := scale.ParseViewMode(v.GetString(KeyViewMode))
	if err != nil {
		return chart.Options{}, err
	}
	var lanes []swimlane.Info
	if err := v.UnmarshalKey(KeySwimlanes, &lanes); err != nil {
		return chart.Options{}, appErrors.New(appErrors.CodeConfigurationError, "decode "+KeySwimlanes, err)
	}
	flag := func(key string) *bool {
		b := v.GetBool(key)
		return &b
	}
	return chart.DefaultOptions().Merge(chart.Partial{
		ViewMode:          &mode,
		ColumnWidth:       v.GetFloat64(KeyColumnWidth),
		BarHeight:         v.GetFloat64(KeyBarHeight),
		Padding:           v.GetFloat64(KeyPadding),
		HeaderHeight:      v.GetFloat64(KeyHeaderHeight),
		DateFormat:        v.GetString(KeyDateFormat),
		SwimlaneInfo:      lanes,
		LockResize:        flag(KeyLockResize),
		CreateTasks:       flag(KeyCreateTasks),
		DragTaskSwimlanes: flag(KeyDragSwimlanes),
		ResizeSwimlanes:   flag(KeyResizeSwimlanes),
		ResizeRows:        flag(KeyResizeRows),
	}), nil
}

func configure(settings *initSettings) error {
	workingDir := strings.TrimSpace(settings.workingDir)
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		workingDir = wd
	}

	userConfigPath := strings.TrimSpace(settings.userConfigPath)
	if userConfigPath == "" {
		path, err := defaultUserConfigPath()
		if err != nil {
			return err
		}
		userConfigPath = path
	}

	projectConfigPath := strings.TrimSpace(settings.projectConfigPath)
	if projectConfigPath == "" {
		path, err := findProjectConfig(workingDir)
		if err != nil {
			return err
		}
		projectConfigPath = path
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := mergeConfigFile(v, userConfigPath); err != nil {
		return appErrors.New(appErrors.CodeConfigurationError, "load user config", err)
	}
	if err := mergeConfigFile(v, projectConfigPath); err != nil {
		return appErrors.New(appErrors.CodeConfigurationError, "load project config", err)
	}

	configMu.Lock()
	defer configMu.Unlock()
	configInst = v
	return nil
}

func mergeConfigFile(v *viper.Viper, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	//nolint:gosec // G304: Config loader intentionally reads user and project config files
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, DirName, "config.yaml"), nil
}

func findProjectConfig(startDir string) (string, error) {
	if strings.TrimSpace(startDir) == "" {
		return "", nil
	}
	dir := startDir
	for {
		candidate := filepath.Join(dir, DirName, "config.yaml")
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return "", fmt.Errorf("config path %s is a directory", candidate)
			}
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func setDefaults(v *viper.Viper) {
	d := chart.DefaultOptions()
	v.SetDefault(KeyViewMode, d.ViewMode.String())
	v.SetDefault(KeyColumnWidth, d.ColumnWidth)
	v.SetDefault(KeyBarHeight, d.BarHeight)
	v.SetDefault(KeyPadding, d.Padding)
	v.SetDefault(KeyHeaderHeight, d.HeaderHeight)
	v.SetDefault(KeyDateFormat, d.DateFormat)
	v.SetDefault(KeyLockResize, d.LockResize)
	v.SetDefault(KeyCreateTasks, d.CreateTasks)
	v.SetDefault(KeyDragSwimlanes, d.DragTaskSwimlanes)
	v.SetDefault(KeyResizeSwimlanes, d.ResizeSwimlanes)
	v.SetDefault(KeyResizeRows, d.ResizeRows)

	v.SetDefault(KeyStoreKind, "file")
	v.SetDefault(KeyStorePath, DefaultStorePath)
	v.SetDefault(KeyStoreDSN, "")

	v.SetDefault(KeyOutputFormat, "rich")
	v.SetDefault(KeyTheme, "tokyonight")
	v.SetDefault(KeyDebug, false)
}

func getViper() (*viper.Viper, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}
	configMu.RLock()
	defer configMu.RUnlock()
	if configInst == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return configInst, nil
}

// reset clears package state for tests.
func reset() {
	configMu.Lock()
	defer configMu.Unlock()
	configInst = nil
	initErr = nil
	configOnce = sync.Once{}
	writePathOverride = ""
}

// ResetForTesting clears package state for tests in other packages.
// Returns a cleanup function that should be deferred.
func ResetForTesting(t interface{ TempDir() string }) func() {
	reset()
	tmp := t.TempDir()
	_ = Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, "config.yaml")))
	writePathOverride = filepath.Join(tmp, "config.yaml")
	return reset
}

// SaveTheme persists the theme name to the appropriate config file.
func SaveTheme(themeName string) error {
	return saveKey(KeyTheme, themeName)
}

// SaveViewMode persists the view mode so the next launch opens at the same
// zoom level.
func SaveViewMode(mode scale.ViewMode) error {
	return saveKey(KeyViewMode, mode.String())
}

// saveKey writes one key into the project config if one exists, otherwise
// into the user config. The user config directory is auto-created if
// needed, but project config directories are never auto-created.
func saveKey(key string, value any) error {
	targetPath, err := findWritableConfigPath()
	if err != nil {
		return fmt.Errorf("find config path: %w", err)
	}

	// Fresh viper instance for this file only
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(targetPath)

	// Keep other settings
	_ = v.ReadInConfig()
	v.Set(key, value)

	dir := filepath.Dir(targetPath)
	//nolint:gosec // G301: User config directory needs standard permissions
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := v.WriteConfigAs(targetPath); err != nil {
		return appErrors.New(appErrors.CodeConfigurationError, "write config", err)
	}
	// Keep the running configuration in step with the file.
	return Set(key, value)
}

// findWritableConfigPath returns the project config path if it exists,
// otherwise the user config path.
func findWritableConfigPath() (string, error) {
	if writePathOverride != "" {
		return writePathOverride, nil
	}
	wd, err := os.Getwd()
	if err == nil {
		projectPath, err := findProjectConfig(wd)
		if err == nil && projectPath != "" {
			return projectPath, nil
		}
	}
	return defaultUserConfigPath()
}
