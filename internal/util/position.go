package util

import (
	"bytes"
	"fmt"
	"strings"
)

// GetLineAndColumn converts a byte offset into 1-based line and column
// numbers.
func GetLineAndColumn(src string, pos int) (line int, column int) {
	line = 1
	column = 1
	for i, char := range src {
		if i == pos {
			break
		}
		if char == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return
}

// GetContextLines renders the error line with up to two preceding lines and
// a caret under the offending column, for positioned error reports.
func GetContextLines(src string, errorLine, errorCol int) string {
	var result bytes.Buffer

	lines := strings.Split(src, "\n")
	if errorLine < 1 || errorLine > len(lines) {
		return ""
	}

	startLine := errorLine - 2
	if startLine < 1 {
		startLine = 1
	}

	for i := startLine; i <= errorLine; i++ {
		content := lines[i-1]
		if i == errorLine {
			margin := fmt.Sprintf("  >  %3d | ", i)
			result.WriteString(margin + content + "\n")
			caretCol := errorCol - 1
			if caretCol > len(content) {
				caretCol = len(content)
			}
			result.WriteString(blankVisible(margin+content[:caretCol]) + "^ here")
		} else {
			result.WriteString(fmt.Sprintf("     %3d | %s\n", i, content))
		}
	}

	return result.String()
}

// blankVisible replaces non-tab characters with spaces so the caret lines up
// under tabbed source too.
func blankVisible(s string) string {
	var buf bytes.Buffer
	for _, c := range s {
		if c == '\t' {
			buf.WriteRune('\t')
		} else {
			buf.WriteRune(' ')
		}
	}
	return buf.String()
}
