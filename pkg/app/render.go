package app

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/zurustar/smfstream/pkg/cli"
)

// render 設定された形式でダンプを出力
// 複数のダンプはYAMLでは複数ドキュメント、テキストではパスの見出し付きで続けて出力する
func (app *Application) render(dumps ...*Dump) error {
	if app.config.Format == cli.FormatYAML {
		return writeYAML(app.out, dumps)
	}
	for i, dump := range dumps {
		if i > 0 {
			if _, err := io.WriteString(app.out, "\n"); err != nil {
				return err
			}
		}
		if err := writeText(app.out, dump); err != nil {
			return err
		}
	}
	return nil
}

func writeYAML(w io.Writer, dumps []*Dump) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, dump := range dumps {
		if err := enc.Encode(dump); err != nil {
			return err
		}
	}
	return enc.Close()
}

// textStyles holds the styles used for text output. The renderer is bound
// to the output writer, so colours only appear on a terminal.
type textStyles struct {
	header lipgloss.Style
	kind   lipgloss.Style
	err    lipgloss.Style
}

func newTextStyles(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		kind:   r.NewStyle().Foreground(lipgloss.Color("10")),
		err:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}

func writeText(w io.Writer, dump *Dump) error {
	st := newTextStyles(w)
	ew := &errWriter{w: w}

	if dump.Path != "" {
		ew.printf("%s\n", st.header.Render("== "+dump.Path))
	}
	if dump.Error != "" {
		ew.printf("%s\n", st.err.Render("error: "+dump.Error))
		return ew.err
	}
	ew.printf("%s\n", st.header.Render(fmt.Sprintf("format %d, %s", dump.Format, dump.Division)))

	for _, td := range dump.Tracks {
		ew.printf("\n%s\n", st.header.Render(fmt.Sprintf("Track %d (%d events)", td.Index, len(td.Events))))
		for _, rec := range td.Events {
			writeRecord(ew, st, rec, false)
		}
		if td.Error != "" {
			ew.printf("%s\n", st.err.Render("error: "+td.Error))
		}
	}

	if dump.Merged != nil {
		ew.printf("\n%s\n", st.header.Render(fmt.Sprintf("Merged (%d events)", len(dump.Merged.Events))))
		for _, rec := range dump.Merged.Events {
			writeRecord(ew, st, rec, true)
		}
		tracks := make([]int, 0, len(dump.Merged.Errors))
		for track := range dump.Merged.Errors {
			tracks = append(tracks, track)
		}
		sort.Ints(tracks)
		for _, track := range tracks {
			ew.printf("%s\n", st.err.Render(fmt.Sprintf("error: track %d: %s", track, dump.Merged.Errors[track])))
		}
	}

	if dump.Forwarded != nil {
		ew.printf("\nsynthesizer: %d messages forwarded\n", *dump.Forwarded)
	}
	return ew.err
}

func writeRecord(ew *errWriter, st textStyles, rec EventRecord, withTrack bool) {
	if withTrack {
		ew.printf("%8d  t%-3d ch%-2d %s %s\n", rec.Time, rec.Track, rec.Channel, st.kind.Render(fmt.Sprintf("%-17s", rec.Kind)), rec.Detail)
		return
	}
	ew.printf("%8d  +%-6d ch%-2d %s %s\n", rec.Time, rec.Delay, rec.Channel, st.kind.Render(fmt.Sprintf("%-17s", rec.Kind)), rec.Detail)
}

// errWriter keeps the first write error so formatting code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
