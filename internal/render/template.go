package render

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/daryltucker/rorb-fews/internal/model"
)

// TemplatePrefix is prepended to an output file name to find its template.
const TemplatePrefix = "Template_"

// TemplateSet resolves template text by name.
type TemplateSet interface {
	Template(name string) (string, error)
}

// DirTemplates reads templates from a directory.
type DirTemplates string

func (d DirTemplates) Template(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(string(d), name))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MapTemplates serves templates from memory.
type MapTemplates map[string]string

func (m MapTemplates) Template(name string) (string, error) {
	t, ok := m[name]
	if !ok {
		return "", fmt.Errorf("template %s: %w", name, os.ErrNotExist)
	}
	return t, nil
}

var placeholderName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Fill substitutes {name} placeholders in text. "{{" and "}}" produce
// literal braces. Values not referenced by the template are ignored; a
// placeholder without a value is an error.
func Fill(file, text string, values map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		switch c := text[i]; c {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return "", model.NewRenderErrorf(file, "", "unterminated placeholder on template line %d", lineOf(text, i))
			}
			key := text[i+1 : i+1+end]
			if !placeholderName.MatchString(key) {
				return "", model.NewRenderErrorf(file, "", "malformed placeholder {%s} on template line %d", key, lineOf(text, i))
			}
			v, ok := values[key]
			if !ok {
				return "", model.NewRenderErrorf(file, "", "no value for placeholder {%s} on template line %d", key, lineOf(text, i))
			}
			b.WriteString(v)
			i += end + 2
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				b.WriteByte('}')
				i += 2
				continue
			}
			return "", model.NewRenderErrorf(file, "", "single '}' on template line %d", lineOf(text, i))
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

func lineOf(text string, offset int) int {
	return strings.Count(text[:offset], "\n") + 1
}

// splitLines turns filled text into file lines, dropping the final
// newline so Text() reproduces the content.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// clearEmptyLines drops blank lines.
func clearEmptyLines(lines []string) []string {
	out := lines[:0:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
