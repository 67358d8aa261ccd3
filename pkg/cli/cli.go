package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// 出力形式
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// AllTracks はトラック指定なし（全トラックを順に出力）を表す
const AllTracks = -1

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	MIDIPath  string // 読み込むSMFファイルのパス
	Track     int    // 出力するトラック番号（AllTracksは全トラック）
	Merged    bool   // 全トラックを時刻順にマージして出力
	Format    string // 出力形式（text, yaml）
	Encoding  string // テキストメタイベントの文字コード（空ならUTF-8）
	SoundFont string // 指定時はマージ結果をシンセサイザーへ送る
	LogLevel  string // ログレベル（debug, info, warn, error）
	ShowHelp  bool   // ヘルプ表示フラグ
}

// ParseArgs コマンドライン引数を解析してConfigを返す
// 環境変数 LOG_LEVEL, SMF_FORMAT, SMF_ENCODING も参照する（フラグが優先）
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("smfdump", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	config := &Config{}

	fs.IntVar(&config.Track, "track", AllTracks, "出力するトラック番号")
	fs.IntVar(&config.Track, "t", AllTracks, "出力するトラック番号（短縮形）")
	fs.BoolVar(&config.Merged, "merged", false, "全トラックを時刻順にマージ")
	fs.BoolVar(&config.Merged, "m", false, "全トラックを時刻順にマージ（短縮形）")
	fs.StringVar(&config.Format, "format", "", "出力形式（text, yaml）")
	fs.StringVar(&config.Format, "f", "", "出力形式（短縮形）")
	fs.StringVar(&config.Encoding, "encoding", "", "テキストメタイベントの文字コード")
	fs.StringVar(&config.Encoding, "e", "", "テキストメタイベントの文字コード（短縮形）")
	fs.StringVar(&config.SoundFont, "soundfont", "", "SoundFontファイル（.sf2）")
	fs.StringVar(&config.SoundFont, "s", "", "SoundFontファイル（短縮形）")
	fs.StringVar(&config.LogLevel, "log-level", "info", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", "info", "ログレベル（短縮形）")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// 環境変数からログレベルを取得（コマンドラインフラグが優先）
	if config.LogLevel == "info" {
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			config.LogLevel = strings.ToLower(logLevelEnv)
		}
	}

	// 環境変数から出力形式を取得
	if config.Format == "" {
		config.Format = strings.ToLower(os.Getenv("SMF_FORMAT"))
	}
	if config.Format == "" {
		config.Format = FormatText
	}

	// 環境変数から文字コードを取得
	if config.Encoding == "" {
		config.Encoding = os.Getenv("SMF_ENCODING")
	}

	// 環境変数からSoundFontを取得
	if config.SoundFont == "" {
		config.SoundFont = os.Getenv("SOUNDFONT")
	}

	// ログレベルの検証
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	if config.Format != FormatText && config.Format != FormatYAML {
		return nil, fmt.Errorf("invalid format: %s (must be text or yaml)", config.Format)
	}

	if config.Track < AllTracks {
		return nil, fmt.Errorf("track must be non-negative, got %d", config.Track)
	}
	if config.Merged && config.Track != AllTracks {
		return nil, fmt.Errorf("--merged and --track cannot be combined")
	}

	// 位置引数（SMFファイルのパス）
	if fs.NArg() > 0 {
		config.MIDIPath = fs.Arg(0)
	}
	if config.MIDIPath == "" && !config.ShowHelp {
		return nil, fmt.Errorf("no MIDI file given")
	}

	return config, nil
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	boolFlags := map[string]bool{
		"-h": true, "--help": true, "-help": true,
		"-m": true, "--merged": true, "-merged": true,
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 0 && arg[0] == '-' {
			flags = append(flags, arg)

			// 値付きフラグ（-t 5 のような場合）は次の引数も追加
			// ただし -t -1 のような負数も値として扱う
			if !boolFlags[arg] && !strings.Contains(arg, "=") && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			// 位置引数
			positional = append(positional, arg)
		}
	}

	// フラグを前に、位置引数を後ろに配置
	return append(flags, positional...)
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `smfdump - Standard MIDI File event dumper

Usage:
  smfdump [options] <file.mid | directory>

Arguments:
  file.mid      読み込むSMFファイル（大文字小文字を区別せずに検索）
  directory     配下の .mid/.midi/.smf ファイルをすべて出力

Options:
  -t, --track <n>             指定トラックのみ出力（デフォルト: 全トラックを順に出力）
  -m, --merged                全トラックを時刻順にマージして出力
  -f, --format <format>       出力形式: text, yaml（デフォルト: text）
  -e, --encoding <name>       テキストメタイベントの文字コード（例: shift_jis）
  -s, --soundfont <file.sf2>  マージ結果をシンセサイザーへ送り、送信数を表示
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: info）
  -h, --help                  このヘルプを表示

Environment Variables:
  LOG_LEVEL=<level>           ログレベル
  SMF_FORMAT=<format>         出力形式
  SMF_ENCODING=<name>         テキストメタイベントの文字コード
  SOUNDFONT=<file.sf2>        SoundFontファイル

Examples:
  smfdump song.mid                      全トラックを出力
  smfdump --track 1 song.mid            トラック1のみ出力
  smfdump --merged song.mid             時刻順にマージして出力
  smfdump -f yaml -e shift_jis KUMA.MID YAML形式、Shift_JISのテキストで出力
  smfdump -m ./titles/kuma              ディレクトリ内の全ファイルをマージして出力
`)
}
