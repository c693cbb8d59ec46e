// Package app wires the command line, project configuration, compiler and
// output writer together.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zurustar/mccompiled/pkg/cli"
	"github.com/zurustar/mccompiled/pkg/compiler"
	"github.com/zurustar/mccompiled/pkg/fileutil"
	"github.com/zurustar/mccompiled/pkg/logger"
	"github.com/zurustar/mccompiled/pkg/output"
	"github.com/zurustar/mccompiled/pkg/project"
	"github.com/zurustar/mccompiled/pkg/script"
)

// ErrCompilation is returned by Run when at least one source failed.
var ErrCompilation = errors.New("compilation failed")

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config     *cli.Config
	log        *slog.Logger
	project    *project.Config
	projectDir string

	stdout io.Writer
	stderr io.Writer
}

// New Applicationを作成
func New(stdout, stderr io.Writer) *Application {
	return &Application{stdout: stdout, stderr: stderr}
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	config, err := cli.ParseArgs(args)
	if err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}
	app.config = config

	if app.config.ShowHelp {
		cli.PrintHelp(app.stdout)
		return nil
	}

	// 2. ロガーの初期化
	if err := logger.InitLoggerTo(app.stderr, app.config.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.log = logger.For("app")

	// 3. プロジェクト設定の読み込み
	if err := app.loadProject(); err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}
	app.log.Info("Project loaded",
		"name", app.project.Name,
		"namespace", app.project.Namespace,
		"features", app.project.Features)

	// 4. ソースファイルの読み込み
	scripts, err := app.loadScripts()
	if err != nil {
		return fmt.Errorf("failed to load scripts: %w", err)
	}
	app.log.Info("Scripts loaded", "count", len(scripts))
	for _, s := range scripts {
		app.log.Debug("Script file", "path", s.Path, "size", s.Size)
	}

	// 5. コンパイル
	results := compiler.CompileScriptsWithResults(scripts, app.compileOptions())

	// 6. 出力（失敗したファイルは書き出さない）
	failed := 0
	for _, r := range results {
		if len(r.Errors) > 0 {
			failed++
			for _, e := range r.Errors {
				fmt.Fprintln(app.stderr, e)
			}
			continue
		}
		dir := filepath.Join(app.config.Output, filepath.FromSlash(r.Name()))
		n, err := output.WriteDir(dir, r.Files)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", r.Name(), err)
		}
		app.log.Info("Script compiled", "script", r.Name(), "files", n, "output", dir)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrCompilation, failed, len(results))
	}
	app.log.Info("Compilation finished", "files", len(results))
	return nil
}

// loadProject は -p で指定された設定、なければ最初のソースの場所にある mcc.yaml を読む
func (app *Application) loadProject() error {
	if app.config.Project != "" {
		data, err := os.ReadFile(app.config.Project)
		if err != nil {
			return err
		}
		cfg, err := project.Parse(data)
		if err != nil {
			return err
		}
		app.project = cfg
		app.projectDir = filepath.Dir(app.config.Project)
		return nil
	}

	dir, err := sourceDir(app.config.Paths[0])
	if err != nil {
		return err
	}
	cfg, err := project.Load(fileutil.NewRealFS(dir))
	if err != nil {
		return err
	}
	app.project = cfg
	app.projectDir = dir
	return nil
}

func sourceDir(p string) (string, error) {
	info, err := os.Stat(p)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return p, nil
	}
	return filepath.Dir(p), nil
}

// loadScripts はディレクトリを再帰的に探索し、ファイルはそのまま読む
func (app *Application) loadScripts() ([]script.Script, error) {
	var scripts []script.Script
	seen := make(map[string]string)
	for _, p := range app.config.Paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		var loaded []script.Script
		if info.IsDir() {
			loaded, err = script.NewLoader(p).LoadAllScripts()
			if err != nil {
				return nil, err
			}
		} else {
			s, err := script.NewLoader(filepath.Dir(p)).LoadScript(filepath.Base(p))
			if err != nil {
				return nil, err
			}
			loaded = []script.Script{*s}
		}
		for _, s := range loaded {
			origin := p
			if info.IsDir() {
				origin = filepath.Join(p, filepath.FromSlash(s.Path))
			}
			name := compiler.CompileResult{Script: s}.Name()
			if prev, ok := seen[name]; ok {
				return nil, fmt.Errorf("%s and %s would both be written to %s", prev, origin, name)
			}
			seen[name] = origin
			scripts = append(scripts, s)
		}
	}
	return scripts, nil
}

func (app *Application) compileOptions() compiler.Options {
	opts := compiler.Options{
		Namespace:    app.project.Namespace,
		GlobalHolder: app.project.GlobalHolder,
		Features:     app.project.Features,
		Logger:       logger.For("compiler"),
	}
	if app.project.Entities != "" {
		dir := app.project.Entities
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(app.projectDir, dir)
		}
		opts.EntityFS = fileutil.NewRealFS(dir)
		opts.EntityDir = "."
	}
	return opts
}
