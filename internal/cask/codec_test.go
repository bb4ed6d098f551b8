package cask

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeFileYAML(t *testing.T) {
	d, err := DecodeFile("testdata/clearvox.yaml")
	if err != nil {
		t.Fatalf("DecodeFile() failed: %v", err)
	}
	if diff := cmp.Diff(clearvox(), d); diff != "" {
		t.Errorf("yaml descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatRuby, FormatYAML, FormatJSON} {
		t.Run(string(f), func(t *testing.T) {
			want := clearvox()
			data, err := Encode(want, f)
			if err != nil {
				t.Fatalf("Encode() failed: %v", err)
			}
			got, err := Decode(data, f)
			if err != nil {
				t.Fatalf("Decode() failed: %v\n%s", err, data)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCaveatsSurviveCrossFormatRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		caveats string
		heredoc bool
	}{
		{name: "plain", caveats: "first\n\n  indented\nlast", heredoc: true},
		{name: "shared indentation", caveats: "  indented one\n  indented two"},
		{name: "trailing whitespace", caveats: "trailing  "},
		{name: "blank line with spaces", caveats: "one\n   \ntwo"},
		{name: "terminator in body", caveats: "line\nEOS\nmore", heredoc: true},
		{name: "both terminators in body", caveats: "line\n  EOS\nEOS2\nmore", heredoc: true},
		{name: "trailing newline", caveats: "text\n", heredoc: true},
		{name: "carriage return", caveats: "dos\r\nline"},
		{name: "quotes and interpolation", caveats: `say "hi" to #{token}\` + "\nnext", heredoc: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := clearvox()
			want.Caveats = tt.caveats

			for _, f := range []Format{FormatYAML, FormatJSON} {
				data, err := Encode(want, f)
				if err != nil {
					t.Fatalf("Encode(%s) failed: %v", f, err)
				}
				decoded, err := Decode(data, f)
				if err != nil {
					t.Fatalf("Decode(%s) failed: %v", f, err)
				}

				rb := Render(decoded)
				got, err := Parse(bytes.NewReader(rb))
				if err != nil {
					t.Fatalf("Parse(Render()) failed: %v\n%s", err, rb)
				}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("%s -> rb mismatch (-want +got):\n%s", f, diff)
				}
				if again := Render(got); !bytes.Equal(rb, again) {
					t.Errorf("Render() is not stable:\n%s\n---\n%s", rb, again)
				}
			}

			isHeredoc := strings.Contains(string(Render(want)), "caveats <<~")
			if isHeredoc != tt.heredoc {
				t.Errorf("heredoc = %v, want %v:\n%s", isHeredoc, tt.heredoc, Render(want))
			}
		})
	}
}

func TestChecksumScalar(t *testing.T) {
	d := clearvox()
	data, err := EncodeJSON(d)
	if err != nil {
		t.Fatalf("EncodeJSON() failed: %v", err)
	}
	if !strings.Contains(string(data), `"sha256": ":no_check"`) {
		t.Errorf("sha256 should encode as a scalar:\n%s", data)
	}

	d.SHA256 = Checksum{Hex: strings.Repeat("ab", 32)}
	data, err = EncodeYAML(d)
	if err != nil {
		t.Fatalf("EncodeYAML() failed: %v", err)
	}
	if !strings.Contains(string(data), "sha256: "+strings.Repeat("ab", 32)) {
		t.Errorf("sha256 digest should encode as a scalar:\n%s", data)
	}
}

func TestDecodeRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "missing token", doc: "version: 1.0.0\nsha256: x\nurl: https://a\nartifacts: [{kind: app, source: A.app}]\n"},
		{name: "unknown field", doc: "token: a\nversion: 1.0.0\nsha256: x\nurl: https://a\nartifacts: [{kind: app, source: A.app}]\nbinary: a\n"},
		{name: "unknown artifact kind", doc: "token: a\nversion: 1.0.0\nsha256: x\nurl: https://a\nartifacts: [{kind: binary, source: a}]\n"},
		{name: "no artifacts", doc: "token: a\nversion: 1.0.0\nsha256: x\nurl: https://a\nartifacts: []\n"},
		{name: "numeric version", doc: "token: a\nversion: 1.5\nsha256: x\nurl: https://a\nartifacts: [{kind: app, source: A.app}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.doc), FormatYAML); err == nil {
				t.Error("Decode() should reject the document")
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"Casks/clearvox.rb": FormatRuby,
		"clearvox.yaml":     FormatYAML,
		"clearvox.YML":      FormatYAML,
		"out/clearvox.json": FormatJSON,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	if _, err := FormatFromPath("clearvox.toml"); err == nil {
		t.Error("FormatFromPath() should reject unknown extensions")
	}
}

func TestDecodeFileAcrossFormats(t *testing.T) {
	dir := t.TempDir()
	want := clearvox()
	for _, f := range []Format{FormatRuby, FormatYAML, FormatJSON} {
		data, err := Encode(want, f)
		if err != nil {
			t.Fatalf("Encode(%s) failed: %v", f, err)
		}
		path := filepath.Join(dir, "clearvox."+string(f))
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}
		got, err := DecodeFile(path)
		if err != nil {
			t.Fatalf("DecodeFile(%s) failed: %v", path, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", f, diff)
		}
	}
}
