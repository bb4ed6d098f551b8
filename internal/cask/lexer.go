package cask

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokSymbol
	tokKey
	tokRegex
	tokHeredoc
	tokLBracket
	tokRBracket
	tokLParen
	tokRParen
	tokComma
)

func (k tokenKind) String() string {
	switch k {
	case tokIdent:
		return "identifier"
	case tokString:
		return "string"
	case tokSymbol:
		return "symbol"
	case tokKey:
		return "keyword argument"
	case tokRegex:
		return "regex"
	case tokHeredoc:
		return "heredoc"
	case tokLBracket, tokRBracket:
		return "bracket"
	case tokLParen, tokRParen:
		return "parenthesis"
	case tokComma:
		return "comma"
	default:
		return "token"
	}
}

type token struct {
	kind tokenKind
	text string
}

// lexLine splits one line of cask DSL into tokens. Comments end the line.
func lexLine(line string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '#':
			return toks, nil
		case c == '"' || c == '\'':
			s, n, err := lexString(line[i:])
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokString, text: s})
			i += n
		case c == ':' && i+1 < len(line) && isIdentStart(line[i+1]):
			j := i + 1
			for j < len(line) && isIdentChar(line[j]) {
				j++
			}
			toks = append(toks, token{kind: tokSymbol, text: line[i+1 : j]})
			i = j
		case c == '[':
			toks = append(toks, token{kind: tokLBracket, text: "["})
			i++
		case c == ']':
			toks = append(toks, token{kind: tokRBracket, text: "]"})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "("})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")"})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, text: ","})
			i++
		case c == '<' && strings.HasPrefix(line[i:], "<<"):
			j := i + 2
			if j < len(line) && (line[j] == '~' || line[j] == '-') {
				j++
			}
			k := j
			for k < len(line) && isIdentChar(line[k]) {
				k++
			}
			if k == j {
				return nil, fmt.Errorf("heredoc without terminator")
			}
			toks = append(toks, token{kind: tokHeredoc, text: line[j:k]})
			i = k
		case c == '/' && len(toks) > 0 && toks[len(toks)-1].kind == tokLParen:
			pattern, n, err := lexRegex(line[i:])
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokRegex, text: pattern})
			i += n
		case isIdentStart(c):
			j := i
			for j < len(line) && isIdentChar(line[j]) {
				j++
			}
			if j < len(line) && line[j] == ':' && (j+1 >= len(line) || line[j+1] != ':') {
				toks = append(toks, token{kind: tokKey, text: line[i:j]})
				j++
			} else {
				toks = append(toks, token{kind: tokIdent, text: line[i:j]})
			}
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q", c)
		}
	}
	return toks, nil
}

// lexString reads a quoted literal at the start of s. Interpolation
// sequences are kept verbatim so templates survive parsing.
func lexString(s string) (string, int, error) {
	quote := s[0]
	var sb strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			switch s[i] {
			case 'n':
				if quote == '"' {
					sb.WriteByte('\n')
				} else {
					sb.WriteString(`\n`)
				}
			case 't':
				if quote == '"' {
					sb.WriteByte('\t')
				} else {
					sb.WriteString(`\t`)
				}
			case 'r':
				if quote == '"' {
					sb.WriteByte('\r')
				} else {
					sb.WriteString(`\r`)
				}
			case '\\', '"', '\'':
				sb.WriteByte(s[i])
			default:
				sb.WriteByte('\\')
				sb.WriteByte(s[i])
			}
		case c == quote:
			return sb.String(), i + 1, nil
		default:
			sb.WriteByte(c)
		}
	}
	return "", 0, fmt.Errorf("unterminated string")
}

// lexRegex reads /pattern/flags. Only the i flag is kept, as (?i).
func lexRegex(s string) (string, int, error) {
	var sb strings.Builder
	i := 1
	for ; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			if s[i+1] != '/' {
				sb.WriteByte(c)
			}
			sb.WriteByte(s[i+1])
			i++
			continue
		}
		if c == '/' {
			break
		}
		sb.WriteByte(c)
	}
	if i >= len(s) {
		return "", 0, fmt.Errorf("unterminated regex")
	}
	i++
	pattern := sb.String()
	for i < len(s) && isIdentChar(s[i]) {
		if s[i] == 'i' {
			pattern = "(?i)" + pattern
		}
		i++
	}
	return pattern, i, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '?' || c == '!'
}
