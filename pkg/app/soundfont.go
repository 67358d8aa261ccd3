package app

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/zurustar/smfstream/pkg/bridge"
	"github.com/zurustar/smfstream/pkg/fileutil"
	"github.com/zurustar/smfstream/pkg/logger"
	"github.com/zurustar/smfstream/pkg/smf"
)

// SampleRate is the synthesizer sample rate.
const SampleRate = 44100

// findSoundFont searches for the SoundFont file in the following order:
// 1. The path as given
// 2. The directory of the MIDI file (case-insensitive)
// 3. The current directory (case-insensitive)
func findSoundFont(name, midiPath string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	base := filepath.Base(name)
	for _, dir := range []string{filepath.Dir(midiPath), "."} {
		actual, err := fileutil.ResolveInsensitive(os.DirFS(dir), base)
		if err == nil {
			return filepath.Join(dir, filepath.FromSlash(actual)), nil
		}
	}
	return "", fmt.Errorf("SoundFont not found: %s: %w", name, fs.ErrNotExist)
}

// drainToSynth MIDIイベントを時刻順にシンセサイザーへ送る（タイミング制御なし）
// SoundFontは最初の呼び出しで読み込み、以降のファイルでも再利用する
func (app *Application) drainToSynth(file *smf.File, midiPath string) (int, error) {
	if app.sf == nil {
		soundFont, err := loadSoundFont(app.config.SoundFont, midiPath)
		if err != nil {
			return 0, err
		}
		app.sf = soundFont
	}

	synth, err := meltysynth.NewSynthesizer(app.sf, meltysynth.NewSynthesizerSettings(SampleRate))
	if err != nil {
		return 0, fmt.Errorf("failed to create synthesizer: %w", err)
	}
	return bridge.NewMIDIBridge(synth).Drain(file.Merged())
}

func loadSoundFont(name, midiPath string) (*meltysynth.SoundFont, error) {
	path, err := findSoundFont(name, midiPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read SoundFont file: %w", err)
	}
	soundFont, err := meltysynth.NewSoundFont(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SoundFont: %w", err)
	}

	logger.GetLogger().Info("SoundFont loaded", "path", path)
	return soundFont, nil
}
