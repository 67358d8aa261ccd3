package smf

import (
	"errors"
	"testing"

	"golang.org/x/text/encoding/japanese"
)

func TestMetaText(t *testing.T) {
	sjis, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte("くまさん"))
	if err != nil {
		t.Fatalf("encoding fixture failed: %v", err)
	}

	tests := []struct {
		name     string
		meta     Meta
		encoding string
		want     string
		wantErr  error
	}{
		{"utf-8 default", Meta{Type: MetaTrackName, Data: []byte("Piano")}, "", "Piano", nil},
		{"shift_jis", Meta{Type: MetaLyric, Data: sjis}, "shift_jis", "くまさん", nil},
		{"shift_jis alias", Meta{Type: MetaText, Data: sjis}, "sjis", "くまさん", nil},
		{"shift_jis without encoding", Meta{Type: MetaLyric, Data: sjis}, "", "", ErrInvalidText},
		{"not a text event", Meta{Type: MetaTempo, Data: []byte{1, 2, 3}}, "", "", ErrUnsupportedEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := TextEncoding(tt.encoding)
			if err != nil {
				t.Fatalf("TextEncoding(%q) failed: %v", tt.encoding, err)
			}
			got, err := tt.meta.Text(enc)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Text failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextEncodingUnknown(t *testing.T) {
	if _, err := TextEncoding("klingon-8"); err == nil {
		t.Error("expected error for unknown encoding")
	}
}

func TestMetaIsText(t *testing.T) {
	for typ := 0; typ < 0x80; typ++ {
		want := typ >= 0x01 && typ <= 0x0F
		if got := (Meta{Type: byte(typ)}).IsText(); got != want {
			t.Errorf("IsText(0x%02X) = %v, want %v", typ, got, want)
		}
	}
}
