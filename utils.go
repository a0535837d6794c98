package main

import (
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

// readClipboardText prefers the plain-text flavor on macOS, where
// clipboard.ReadAll can hand back RTF.
func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

// cleanClipboardText normalizes pasted text for use as node text:
// markup stripped, control characters dropped, newlines unified.
func cleanClipboardText(text string) string {
	if text == "" {
		return text
	}
	if strings.HasPrefix(text, "{\\rtf") || strings.Contains(text, "\\rtf1") {
		text = stripRTF(text)
	} else if looksLikeHTML(text) {
		text = stripHTML(text)
	}

	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' || r >= 32 {
			result.WriteRune(r)
		}
	}
	normalized := result.String()
	normalized = strings.ReplaceAll(normalized, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.TrimSpace(normalized)
}

func looksLikeHTML(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "<") &&
		(strings.Contains(text, "<html") || strings.Contains(text, "<body") || strings.Contains(text, "<div"))
}

// stripRTF drops RTF control words and group braces, keeping literal
// text and the \par/\line/\tab whitespace words.
func stripRTF(text string) string {
	var result strings.Builder
	result.Grow(len(text))
	runes := []rune(text)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '{' || r == '}':
			continue
		case r == '\\':
			if i+1 >= len(runes) {
				continue
			}
			next := runes[i+1]
			if next == '\\' || next == '{' || next == '}' {
				result.WriteRune(next)
				i++
				continue
			}
			if !isLetter(next) {
				i++
				continue
			}
			start := i + 1
			for i+1 < len(runes) && isLetter(runes[i+1]) {
				i++
			}
			word := string(runes[start : i+1])
			for i+1 < len(runes) && (runes[i+1] == '-' || (runes[i+1] >= '0' && runes[i+1] <= '9')) {
				i++
			}
			if i+1 < len(runes) && runes[i+1] == ' ' {
				i++
			}
			switch word {
			case "par", "line":
				result.WriteRune('\n')
			case "tab":
				result.WriteRune('\t')
			}
		default:
			result.WriteRune(r)
		}
	}
	return result.String()
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func stripHTML(html string) string {
	var result strings.Builder
	result.Grow(len(html))
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			result.WriteRune(r)
		}
	}
	text := result.String()
	replacements := [][2]string{
		{"&lt;", "<"}, {"&gt;", ">"}, {"&amp;", "&"},
		{"&quot;", "\""}, {"&#39;", "'"}, {"&nbsp;", " "},
	}
	for _, rep := range replacements {
		text = strings.ReplaceAll(text, rep[0], rep[1])
	}
	return text
}
