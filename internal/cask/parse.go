package cask

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseError reports a cask file that could not be read.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

// ParseFile parses the cask file at path.
func ParseFile(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cask %s: %w", path, err)
	}
	d, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse cask %s: %w", path, err)
	}
	return d, nil
}

// Parse reads the Ruby cask DSL subset used by application casks.
func Parse(r io.Reader) (*Descriptor, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cask: %w", err)
	}
	p := &parser{lines: lines}
	return p.parse()
}

type statement struct {
	line int
	toks []token
	// body holds heredoc content when the statement ends in one.
	body string
}

type parser struct {
	lines []string
	pos   int
}

func (p *parser) errorf(line int, format string, args ...any) error {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// next returns the next non-empty logical statement, joining lines while
// brackets remain open or a line ends in a comma, and collecting heredoc
// bodies.
func (p *parser) next() (*statement, error) {
	for p.pos < len(p.lines) {
		start := p.pos + 1
		toks, err := lexLine(p.lines[p.pos])
		p.pos++
		if err != nil {
			return nil, p.errorf(start, "%v", err)
		}
		if len(toks) == 0 {
			continue
		}
		for depth(toks) > 0 || toks[len(toks)-1].kind == tokComma {
			if p.pos >= len(p.lines) {
				return nil, p.errorf(start, "unterminated statement")
			}
			more, err := lexLine(p.lines[p.pos])
			p.pos++
			if err != nil {
				return nil, p.errorf(p.pos, "%v", err)
			}
			toks = append(toks, more...)
		}
		st := &statement{line: start, toks: toks}
		if last := toks[len(toks)-1]; last.kind == tokHeredoc {
			body, err := p.heredoc(last.text)
			if err != nil {
				return nil, p.errorf(start, "%v", err)
			}
			st.body = body
		}
		return st, nil
	}
	return nil, io.EOF
}

func depth(toks []token) int {
	d := 0
	for _, t := range toks {
		switch t.kind {
		case tokLBracket, tokLParen:
			d++
		case tokRBracket, tokRParen:
			d--
		}
	}
	return d
}

// heredoc consumes lines up to the terminator and strips the common
// indentation, matching <<~ semantics.
func (p *parser) heredoc(term string) (string, error) {
	var body []string
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		p.pos++
		if strings.TrimSpace(line) == term {
			return dedent(body), nil
		}
		body = append(body, line)
	}
	return "", fmt.Errorf("heredoc %s not terminated", term)
}

func dedent(lines []string) string {
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			out[i] = ""
			continue
		}
		out[i] = strings.TrimRight(l[indent:], " \t")
	}
	return strings.Join(out, "\n")
}

func (p *parser) parse() (*Descriptor, error) {
	st, err := p.next()
	if err == io.EOF {
		return nil, p.errorf(0, "empty cask file")
	}
	if err != nil {
		return nil, err
	}
	if len(st.toks) != 3 || st.toks[0].text != "cask" || st.toks[1].kind != tokString || st.toks[2].text != "do" {
		return nil, p.errorf(st.line, `expected cask "token" do`)
	}

	d := &Descriptor{Token: st.toks[1].text}
	for {
		st, err := p.next()
		if err == io.EOF {
			return nil, p.errorf(len(p.lines), "missing end for cask block")
		}
		if err != nil {
			return nil, err
		}
		head := st.toks[0]
		if head.kind != tokIdent {
			return nil, p.errorf(st.line, "unexpected %s %q", head.kind, head.text)
		}
		if head.text == "end" {
			if _, err := p.next(); err != io.EOF {
				return nil, p.errorf(p.pos, "content after cask block")
			}
			return d, nil
		}
		if err := p.stanza(d, st); err != nil {
			return nil, err
		}
	}
}

func (p *parser) stanza(d *Descriptor, st *statement) error {
	args := st.toks[1:]
	switch name := st.toks[0].text; name {
	case "version":
		if len(args) == 1 && args[0].kind == tokSymbol && args[0].text == LatestVersion {
			d.Version = LatestVersion
			return nil
		}
		s, err := p.singleString(st, args)
		d.Version = s
		return err
	case "sha256":
		if len(args) == 1 && args[0].kind == tokSymbol && args[0].text == "no_check" {
			d.SHA256 = Checksum{NoCheck: true}
			return nil
		}
		s, err := p.singleString(st, args)
		d.SHA256 = Checksum{Hex: s}
		return err
	case "url":
		return p.urlStanza(d, st, args)
	case "name":
		s, err := p.singleString(st, args)
		d.Name = append(d.Name, s)
		return err
	case "desc":
		s, err := p.singleString(st, args)
		d.Desc = s
		return err
	case "homepage":
		s, err := p.singleString(st, args)
		d.Homepage = s
		return err
	case "livecheck":
		if len(args) != 1 || args[0].text != "do" {
			return p.errorf(st.line, "livecheck expects a do block")
		}
		lc, err := p.livecheckBlock()
		d.Livecheck = lc
		return err
	case "depends_on":
		kw, err := p.keywords(st, args)
		if err != nil {
			return err
		}
		for k, v := range kw {
			if k != "macos" || len(v) != 1 {
				return p.errorf(st.line, "unsupported depends_on %s", k)
			}
			d.DependsOn.MacOS = v[0]
		}
		return nil
	case "app", "pkg":
		s, err := p.singleString(st, args)
		kind := KindApp
		if name == "pkg" {
			kind = KindPkg
		}
		d.Artifacts = append(d.Artifacts, Artifact{Kind: kind, Source: s})
		return err
	case "installer":
		kw, err := p.keywords(st, args)
		if err != nil {
			return err
		}
		v, ok := kw["manual"]
		if !ok || len(kw) != 1 || len(v) != 1 {
			return p.errorf(st.line, "installer supports only manual:")
		}
		d.Artifacts = append(d.Artifacts, Artifact{Kind: KindInstallerManual, Source: v[0]})
		return nil
	case "zap":
		kw, err := p.keywords(st, args)
		if err != nil {
			return err
		}
		for k, v := range kw {
			switch k {
			case "trash":
				d.Zap.Trash = append(d.Zap.Trash, v...)
			case "rmdir":
				d.Zap.Rmdir = append(d.Zap.Rmdir, v...)
			default:
				return p.errorf(st.line, "unsupported zap directive %s", k)
			}
		}
		return nil
	case "caveats":
		if len(args) == 1 && args[0].kind == tokHeredoc {
			d.Caveats = st.body
			return nil
		}
		s, err := p.singleString(st, args)
		d.Caveats = s
		return err
	default:
		return p.errorf(st.line, "unsupported stanza %q", name)
	}
}

func (p *parser) singleString(st *statement, args []token) (string, error) {
	if len(args) != 1 || args[0].kind != tokString {
		return "", p.errorf(st.line, "%s expects a single string", st.toks[0].text)
	}
	return args[0].text, nil
}

func (p *parser) urlStanza(d *Descriptor, st *statement, args []token) error {
	if len(args) == 0 || args[0].kind != tokString {
		return p.errorf(st.line, "url expects a string")
	}
	d.URL = args[0].text
	if len(args) == 1 {
		return nil
	}
	if args[1].kind != tokComma {
		return p.errorf(st.line, "unexpected %s after url", args[1].kind)
	}
	kw, err := p.keywords(st, args[2:])
	if err != nil {
		return err
	}
	for k, v := range kw {
		if k != "verified" || len(v) != 1 {
			return p.errorf(st.line, "unsupported url parameter %s", k)
		}
		d.URLVerified = v[0]
	}
	return nil
}

// keywords parses `key: value, key: [v1, v2]` argument lists. Symbol
// values keep their leading colon.
func (p *parser) keywords(st *statement, args []token) (map[string][]string, error) {
	out := make(map[string][]string)
	i := 0
	for i < len(args) {
		if args[i].kind != tokKey {
			return nil, p.errorf(st.line, "expected keyword argument, got %s", args[i].kind)
		}
		key := args[i].text
		i++
		if i >= len(args) {
			return nil, p.errorf(st.line, "missing value for %s", key)
		}
		switch args[i].kind {
		case tokString:
			out[key] = append(out[key], args[i].text)
			i++
		case tokSymbol:
			out[key] = append(out[key], ":"+args[i].text)
			i++
		case tokLBracket:
			i++
			for i < len(args) && args[i].kind != tokRBracket {
				switch args[i].kind {
				case tokString:
					out[key] = append(out[key], args[i].text)
				case tokComma:
				default:
					return nil, p.errorf(st.line, "unexpected %s in %s list", args[i].kind, key)
				}
				i++
			}
			if i >= len(args) {
				return nil, p.errorf(st.line, "unclosed list for %s", key)
			}
			i++
		default:
			return nil, p.errorf(st.line, "unexpected %s for %s", args[i].kind, key)
		}
		if i < len(args) {
			if args[i].kind != tokComma {
				return nil, p.errorf(st.line, "expected comma, got %s", args[i].kind)
			}
			i++
		}
	}
	return out, nil
}

func (p *parser) livecheckBlock() (*Livecheck, error) {
	lc := &Livecheck{}
	for {
		st, err := p.next()
		if err == io.EOF {
			return nil, p.errorf(len(p.lines), "missing end for livecheck block")
		}
		if err != nil {
			return nil, err
		}
		args := st.toks[1:]
		switch st.toks[0].text {
		case "end":
			return lc, nil
		case "url":
			if len(args) != 1 {
				return nil, p.errorf(st.line, "livecheck url expects one argument")
			}
			switch args[0].kind {
			case tokSymbol:
				lc.URL = ":" + args[0].text
			case tokString:
				lc.URL = args[0].text
			default:
				return nil, p.errorf(st.line, "livecheck url expects a string or symbol")
			}
		case "strategy":
			if len(args) != 1 || args[0].kind != tokSymbol {
				return nil, p.errorf(st.line, "strategy expects a symbol")
			}
			lc.Strategy = args[0].text
		case "regex":
			if len(args) != 3 || args[0].kind != tokLParen || args[1].kind != tokRegex || args[2].kind != tokRParen {
				return nil, p.errorf(st.line, "regex expects regex(/pattern/)")
			}
			lc.Regex = args[1].text
		default:
			return nil, p.errorf(st.line, "unsupported livecheck directive %q", st.toks[0].text)
		}
	}
}
