package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gantry/internal/chart"
	"gantry/internal/config"
	"gantry/internal/debug"
	appErrors "gantry/internal/errors"
	"gantry/internal/input"
	"gantry/internal/render"
	"gantry/internal/scale"
	"gantry/internal/store"
	"gantry/internal/ui"
	"gantry/internal/ui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const openTimeout = 15 * time.Second

func main() {
	if err := config.Initialize(); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	versionFlag := flag.Bool("version", false, "Print version information and exit")
	storeFlag := flag.String("store", config.GetString(config.KeyStoreKind), "Store kind (file, sqlite, postgres)")
	pathFlag := flag.String("path", config.GetString(config.KeyStorePath), "Task file or SQLite database")
	dsnFlag := flag.String("dsn", config.GetString(config.KeyStoreDSN), "Postgres connection string")
	viewModeFlag := flag.String("view-mode", config.GetString(config.KeyViewMode), "Initial view mode (Hour, Quarter Day, Half Day, Day, Week, Month, Year)")
	themeFlag := flag.String("theme", config.GetString(config.KeyTheme), "Colour theme")
	outputFormatFlag := flag.String("output-format", config.GetString(config.KeyOutputFormat), "Detail panel markdown style (rich, light, plain)")
	debugFlag := flag.Bool("debug", config.GetBool(config.KeyDebug), "Write a debug log to ~/.gantry/debug.log")
	exportFlag := flag.String("export-svg", "", "Render the chart to an SVG file and exit")
	flag.Parse()

	if *versionFlag {
		printVersion()
		os.Exit(0)
	}

	visited := map[string]struct{}{}
	flag.CommandLine.Visit(func(f *flag.Flag) {
		visited[f.Name] = struct{}{}
	})

	runtime := computeRuntimeOptions(runtimeFlags{
		store:        storeFlag,
		path:         pathFlag,
		dsn:          dsnFlag,
		viewMode:     viewModeFlag,
		theme:        themeFlag,
		outputFormat: outputFormatFlag,
		debug:        debugFlag,
		exportSVG:    exportFlag,
	}, visited)

	if err := run(runtime); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(runtime runtimeOptions) error {
	if err := debug.Init(runtime.debug); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: debug log disabled: %v\n", err)
	}
	defer debug.Close()

	if runtime.theme != "" && !theme.Set(runtime.theme) {
		fmt.Fprintf(os.Stderr, "Warning: unknown theme %q, using %s\n", runtime.theme, theme.CurrentName())
	}
	lipgloss.SetColorProfile(termenv.EnvColorProfile())

	// the view-mode flag has to win over the document's saved mode
	if flagWasSet(runtime, "view-mode") {
		if err := config.ApplyOverrides(map[string]any{config.KeyViewMode: runtime.viewMode}); err != nil {
			return err
		}
	}
	base, err := config.ChartOptions()
	if err != nil {
		return err
	}

	anim := newAnimator()
	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	s, doc, err := openDocument(ctx, runtime, anim)
	cancel()
	if err != nil {
		anim.Stop()
		return err
	}
	defer func() { _ = s.Close() }()

	opts := chartOptions(base, doc, flagWasSet(runtime, "view-mode"))

	anim.Stage(stageRendering, fmt.Sprintf("%d tasks", len(doc.Tasks)))
	if runtime.exportSVG != "" {
		err := exportHeadless(runtime.exportSVG, doc, opts)
		anim.Stop()
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d tasks to %s\n", len(doc.Tasks), runtime.exportSVG)
		return nil
	}
	anim.Stop()

	appCfg := ui.Config{
		Store:        s,
		Document:     doc,
		Options:      opts,
		Source:       runtime.source(),
		OutputFormat: runtime.outputFormat,
		Version:      Version,
		SaveViewMode: config.SaveViewMode,
		SaveTheme:    config.SaveTheme,
	}
	return runProgram(appCfg, ui.NewApp, func(app *ui.App) programRunner {
		return tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseAllMotion())
	})
}

// openDocument opens the configured store and loads it. A task file that
// does not exist yet starts out empty and is created on the first save.
func openDocument(ctx context.Context, runtime runtimeOptions, anim startupAnimator) (store.Store, store.Document, error) {
	kind, err := store.ParseKind(runtime.store)
	if err != nil {
		return nil, store.Document{}, err
	}
	anim.Stage(stageOpeningStore, string(kind))
	s, err := store.Open(ctx, store.Config{Kind: kind, Path: runtime.path, DSN: runtime.dsn})
	if err != nil {
		return nil, store.Document{}, err
	}
	anim.Stage(stageLoadingTasks, runtime.source())
	doc, err := s.Load(ctx)
	if appErrors.IsCode(err, appErrors.CodeNotFound) {
		return s, store.Document{}, nil
	}
	if err != nil {
		_ = s.Close()
		return nil, store.Document{}, err
	}
	return s, doc, nil
}

// chartOptions overlays the document's saved view mode and swimlane layout on
// the configured options.
func chartOptions(base chart.Options, doc store.Document, viewModeForced bool) chart.Options {
	var partial chart.Partial
	if !viewModeForced && doc.ViewMode != "" {
		if mode, err := scale.ParseViewMode(doc.ViewMode); err == nil {
			partial.ViewMode = &mode
		}
	}
	if len(doc.Swimlanes) > 0 {
		partial.SwimlaneInfo = doc.Swimlanes
	}
	return base.Merge(partial)
}

func exportHeadless(path string, doc store.Document, opts chart.Options) error {
	scene := render.NewScene()
	c, err := chart.New(chart.Mount{
		Backend:  scene,
		Input:    input.NewBus(),
		Viewport: &render.StaticViewport{},
	}, doc.Tasks, opts, chart.Callbacks{})
	if err != nil {
		return err
	}
	defer c.Close()
	return ui.ExportSVGFile(path, scene, c)
}

// newAnimator shows a spinner on interactive terminals only.
func newAnimator() startupAnimator {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return noopAnimator{}
	}
	return newStartupSpinner(os.Stderr, startupDelay)
}

type programRunner interface {
	Run() (tea.Model, error)
}

type programFactory func(*ui.App) programRunner

func runProgram(cfg ui.Config, builder func(ui.Config) (*ui.App, error), factory programFactory) error {
	app, err := builder(cfg)
	if err != nil {
		return fmt.Errorf("initialize UI: %w", err)
	}
	if factory == nil {
		return errors.New("program factory is nil")
	}
	prog := factory(app)
	if prog == nil {
		return errors.New("program is nil")
	}
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run UI: %w", err)
	}
	if n := app.Pending(); n > 0 {
		fmt.Fprintf(os.Stderr, "Discarded %d unsaved change(s)\n", n)
	}
	return nil
}

type runtimeFlags struct {
	store        *string
	path         *string
	dsn          *string
	viewMode     *string
	theme        *string
	outputFormat *string
	debug        *bool
	exportSVG    *string
}

type runtimeOptions struct {
	store        string
	path         string
	dsn          string
	viewMode     string
	theme        string
	outputFormat string
	debug        bool
	exportSVG    string
	explicit     map[string]struct{}
}

// source names the document in the header.
func (r runtimeOptions) source() string {
	if kind, err := store.ParseKind(r.store); err == nil && kind == store.KindPostgres {
		return "postgres"
	}
	return r.path
}

func computeRuntimeOptions(flags runtimeFlags, visited map[string]struct{}) runtimeOptions {
	explicit := map[string]struct{}{}
	pick := func(name, key string, value *string) string {
		if value != nil && flagWasExplicitlySet(name, visited) {
			explicit[name] = struct{}{}
			return strings.TrimSpace(*value)
		}
		return strings.TrimSpace(config.GetString(key))
	}

	opts := runtimeOptions{
		store:        pick("store", config.KeyStoreKind, flags.store),
		path:         pick("path", config.KeyStorePath, flags.path),
		dsn:          pick("dsn", config.KeyStoreDSN, flags.dsn),
		viewMode:     pick("view-mode", config.KeyViewMode, flags.viewMode),
		theme:        pick("theme", config.KeyTheme, flags.theme),
		outputFormat: pick("output-format", config.KeyOutputFormat, flags.outputFormat),
		debug:        config.GetBool(config.KeyDebug),
		explicit:     explicit,
	}
	if flags.debug != nil && flagWasExplicitlySet("debug", visited) {
		opts.debug = *flags.debug
	}
	if flags.exportSVG != nil {
		opts.exportSVG = strings.TrimSpace(*flags.exportSVG)
	}
	return opts
}

func flagWasSet(r runtimeOptions, name string) bool {
	_, ok := r.explicit[name]
	return ok
}

func flagWasExplicitlySet(name string, visited map[string]struct{}) bool {
	if _, ok := visited[name]; ok {
		return true
	}
	f := flag.CommandLine.Lookup(name)
	if f == nil {
		return false
	}
	return f.Value.String() != f.DefValue
}
