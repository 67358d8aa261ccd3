package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sinshu/go-meltysynth/meltysynth"
	"golang.org/x/text/encoding"

	"github.com/zurustar/smfstream/pkg/cli"
	"github.com/zurustar/smfstream/pkg/fileutil"
	"github.com/zurustar/smfstream/pkg/logger"
	"github.com/zurustar/smfstream/pkg/smf"
)

// Application はsmfdumpのメインロジックを管理する
type Application struct {
	config *cli.Config
	log    *slog.Logger
	out    io.Writer // ダンプ結果の出力先
	errOut io.Writer // ログの出力先
	enc    encoding.Encoding
	sf     *meltysynth.SoundFont // 読み込み済みのSoundFont（ディレクトリ処理で再利用）
}

// midiExtensions ディレクトリ処理で対象とする拡張子
var midiExtensions = []string{".mid", ".midi", ".smf"}

// New Applicationを作成
func New(out, errOut io.Writer) *Application {
	return &Application{
		out:    out,
		errOut: errOut,
	}
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	if err := app.parseArgs(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if app.config.ShowHelp {
		cli.PrintHelp(app.out)
		return nil
	}

	// 2. ロガーの初期化
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	enc, err := smf.TextEncoding(app.config.Encoding)
	if err != nil {
		return err
	}
	app.enc = enc

	// 3. ディレクトリ指定時は配下のSMFファイルをすべて処理
	if info, err := os.Stat(app.config.MIDIPath); err == nil && info.IsDir() {
		if err := app.runDir(app.config.MIDIPath); err != nil {
			return err
		}
		app.log.Debug("Application terminated normally")
		return nil
	}

	// 4. SMFファイルの読み込み
	file, err := app.loadFile(app.config.MIDIPath)
	if err != nil {
		return fmt.Errorf("failed to load MIDI file: %w", err)
	}

	// 5. ダンプの作成
	dump, err := app.buildDump(file)
	if err != nil {
		return err
	}

	// 6. シンセサイザーへの送信（SoundFont指定時のみ）
	if err := app.synthesize(file, app.config.MIDIPath, dump); err != nil {
		return err
	}

	// 7. 出力
	if err := app.render(dump); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	app.log.Debug("Application terminated normally")
	return nil
}

// parseArgs コマンドライン引数を解析
func (app *Application) parseArgs(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

// initLogger ロガーを初期化
func (app *Application) initLogger() error {
	if err := logger.InitLoggerWithWriter(app.config.LogLevel, app.errOut); err != nil {
		return err
	}
	app.log = logger.GetLogger()
	return nil
}

// loadFile 大文字小文字を区別せずにSMFファイルを探して解析
func (app *Application) loadFile(path string) (*smf.File, error) {
	fsys, name := fileutil.SplitOSPath(path)
	file, err := smf.OpenFS(fsys, name)
	if err != nil {
		return nil, err
	}
	app.log.Info("MIDI file loaded",
		"path", path,
		"format", file.Format,
		"tracks", len(file.Tracks),
		"division", file.TimeDivision().String())
	return file, nil
}

// runDir ディレクトリ配下のSMFファイルを順に処理する
// 解析に失敗したファイルはエラーとして記録し、残りのファイルの処理を続ける
func (app *Application) runDir(dir string) error {
	names, err := fileutil.FindFilesByExt(os.DirFS(dir), midiExtensions...)
	if err != nil {
		return fmt.Errorf("failed to scan directory: %w", err)
	}
	if len(names) == 0 {
		return fmt.Errorf("no MIDI files found in %s", dir)
	}

	dumps := make([]*Dump, 0, len(names))
	var failed int
	for _, name := range names {
		path := filepath.Join(dir, filepath.FromSlash(name))
		file, err := app.loadFile(path)
		if err != nil {
			app.log.Warn("MIDI file skipped", "path", path, "error", err)
			dumps = append(dumps, &Dump{Path: name, Error: err.Error()})
			failed++
			continue
		}
		dump, err := app.buildDump(file)
		if err != nil {
			app.log.Warn("MIDI file skipped", "path", path, "error", err)
			dumps = append(dumps, &Dump{Path: name, Error: err.Error()})
			failed++
			continue
		}
		dump.Path = name

		if err := app.synthesize(file, path, dump); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		dumps = append(dumps, dump)
	}

	if err := app.render(dumps...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d MIDI files could not be dumped", failed, len(names))
	}
	return nil
}

// synthesize SoundFont指定時にマージ結果をシンセサイザーへ送り、送信数をダンプに記録する
func (app *Application) synthesize(file *smf.File, midiPath string, dump *Dump) error {
	if app.config.SoundFont == "" {
		return nil
	}
	n, err := app.drainToSynth(file, midiPath)
	if err != nil {
		return fmt.Errorf("failed to drive synthesizer: %w", err)
	}
	dump.Forwarded = &n
	return nil
}
