package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/killallgit/easel/pkg/logger"
)

// HighlightStyle is the chroma style used for JSON output
var HighlightStyle = "monokai"

// HighlightJSON syntax highlights JSON for a 256 colour terminal, returning
// the input unchanged if highlighting fails
func HighlightJSON(src string) string {
	return highlight(src, "json", "terminal256")
}

func highlight(src, language, formatterName string) string {
	if src == "" {
		return ""
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	formatter := formatters.Get(formatterName)
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, src)
	if err != nil {
		logger.Debug("Failed to tokenise %s, using plain text: %v", language, err)
		return src
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, styles.Get(HighlightStyle), iterator); err != nil {
		logger.Debug("Failed to format %s, using plain text: %v", language, err)
		return src
	}
	return buf.String()
}
