package filtergraph

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"hookclip/internal/textutil"
)

// Value renders one filter option value.
type Value interface {
	render() (string, error)
}

type intValue int

func (v intValue) render() (string, error) { return strconv.Itoa(int(v)), nil }

type floatValue float64

func (v floatValue) render() (string, error) {
	return strconv.FormatFloat(float64(v), 'f', -1, 64), nil
}

type exprValue string

func (v exprValue) render() (string, error) {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return "", fmt.Errorf("empty expression")
	}
	if strings.ContainsAny(s, "[];':\\") {
		return "", fmt.Errorf("expression %q contains reserved characters", s)
	}
	return strings.ReplaceAll(s, ",", `\,`), nil
}

type rawValue string

func (v rawValue) render() (string, error) {
	s := string(v)
	if s == "" {
		return "", fmt.Errorf("empty value")
	}
	for _, r := range s {
		if unicode.IsSpace(r) || strings.ContainsRune("[];,':\\", r) {
			return "", fmt.Errorf("value %q contains reserved character %q", s, r)
		}
	}
	return s, nil
}

type textValue string

func (v textValue) render() (string, error) {
	s := string(v)
	for _, r := range s {
		if r == '\\' {
			return "", fmt.Errorf("text contains a backslash, which cannot be escaped safely")
		}
		if r != '\n' && unicode.IsControl(r) {
			return "", fmt.Errorf("text contains control character %U", r)
		}
	}
	return "'" + textutil.EscapeFilterText(s) + "'", nil
}

// Int renders an integer literal.
func Int(v int) Value { return intValue(v) }

// Float renders a decimal literal without exponent notation.
func Float(v float64) Value { return floatValue(v) }

// Expr renders an ffmpeg arithmetic expression such as "(w-text_w)/2".
// Commas are escaped so function calls like min(a,b) stay inside the option.
func Expr(s string) Value { return exprValue(s) }

// Raw renders a bare token such as a pixel format, colour or file name.
func Raw(s string) Value { return rawValue(s) }

// Text renders a quoted, escaped text literal.
func Text(s string) Value { return textValue(s) }
