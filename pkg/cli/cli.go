// Package cli parses the mcc command line.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultOutput is the output directory used when neither the flag nor
// MCC_OUTPUT is given.
const DefaultOutput = "out"

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	Paths    []string // ソースファイルまたはディレクトリ
	Output   string   // 出力先ディレクトリ
	Project  string   // mcc.yaml のパス（空なら最初のソースディレクトリを探す）
	LogLevel string   // debug, info, warn, error
	ShowHelp bool
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ParseArgs コマンドライン引数を解析してConfigを返す。
// フラグが優先され、指定されなかったものは環境変数から補う。
func ParseArgs(args []string) (*Config, error) {
	return parse(args, os.Getenv)
}

func parse(args []string, getenv func(string) string) (*Config, error) {
	fs := flag.NewFlagSet("mcc", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	config := &Config{}
	fs.StringVar(&config.Output, "output", DefaultOutput, "出力先ディレクトリ")
	fs.StringVar(&config.Output, "o", DefaultOutput, "出力先ディレクトリ（短縮形）")
	fs.StringVar(&config.Project, "project", "", "mcc.yaml のパス")
	fs.StringVar(&config.Project, "p", "", "mcc.yaml のパス（短縮形）")
	fs.StringVar(&config.LogLevel, "log-level", "info", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", "info", "ログレベル（短縮形）")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// 環境変数からの設定（コマンドラインフラグが優先）
	if !set["output"] && !set["o"] {
		if v := getenv("MCC_OUTPUT"); v != "" {
			config.Output = v
		}
	}
	if !set["project"] && !set["p"] {
		config.Project = getenv("MCC_PROJECT")
	}
	if !set["log-level"] && !set["l"] {
		if v := getenv("LOG_LEVEL"); v != "" {
			config.LogLevel = v
		}
	}
	config.LogLevel = strings.ToLower(config.LogLevel)

	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}
	if config.Output == "" {
		return nil, fmt.Errorf("output directory must not be empty")
	}

	config.Paths = fs.Args()
	if len(config.Paths) == 0 {
		config.Paths = []string{"."}
	}
	return config, nil
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(arg) > 1 && arg[0] == '-' {
			flags = append(flags, arg)
			// -o out のように値が続く場合
			if !strings.Contains(arg, "=") && !isBoolFlag(arg) && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
			continue
		}
		positional = append(positional, arg)
	}

	if len(positional) > 0 {
		flags = append(flags, "--")
	}
	return append(flags, positional...)
}

func isBoolFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "-help"
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `mcc - MCCompiled compiler

Usage:
  mcc [options] [path ...]

Arguments:
  path          .mcc ファイル、またはそれを含むディレクトリ（省略時はカレントディレクトリ）
                ディレクトリは再帰的に探索される

Options:
  -o, --output <dir>          出力先ディレクトリ（デフォルト: out）
  -p, --project <file>        mcc.yaml のパス（デフォルト: 最初のソースディレクトリ）
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: info）
  -h, --help                  このヘルプを表示

Environment Variables:
  MCC_OUTPUT=<dir>            出力先ディレクトリ
  MCC_PROJECT=<file>          mcc.yaml のパス
  LOG_LEVEL=<level>           ログレベル

Examples:
  mcc src                     src 以下の全ソースをコンパイル
  mcc -o bp/functions main.mcc
  mcc --log-level debug src
`)
}
