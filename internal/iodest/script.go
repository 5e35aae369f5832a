package iodest

import (
	_ "embed"
	"io/fs"
	"os"
	"strings"

	"github.com/mcw-ctsi/i2b2export/internal/iofs"
	"github.com/mcw-ctsi/i2b2export/pkg/config"
)

//go:embed sql/schema.sql
var schemaSQL string

//go:embed sql/indexes.sql
var indexesSQL string

// CheckScripts verifies that custom schema and index scripts are
// regular files, so a bad path fails before any database work.
func CheckScripts(cfg config.ExportConfig) error {
	for _, v := range []string{cfg.SchemaFile, cfg.IndexFile} {
		if v != "" && !iofs.FileExists(v) {
			return ReadScriptError(v, fs.ErrNotExist)
		}
	}
	return nil
}

// loadScript returns the content of an external script, or the
// embedded default when path is empty.
func loadScript(path, embedded string) (string, error) {
	if path == "" {
		return embedded, nil
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		return "", ReadScriptError(path, err)
	}
	return string(bs), nil
}

// splitScript breaks a script into statements on ';'. Text from '--' to
// the end of a line is dropped. Both are ignored inside single quotes.
func splitScript(script string) []string {
	var res []string
	var sb strings.Builder
	var inQuote, inComment bool

	for i := 0; i < len(script); i++ {
		c := script[i]
		switch {
		case inComment:
			if c == '\n' {
				inComment = false
				sb.WriteByte(c)
			}
		case inQuote:
			sb.WriteByte(c)
			if c == '\'' {
				inQuote = false
			}
		case c == '\'':
			inQuote = true
			sb.WriteByte(c)
		case c == '-' && i+1 < len(script) && script[i+1] == '-':
			inComment = true
			i++
		case c == ';':
			res = appendStatement(res, sb.String())
			sb.Reset()
		default:
			sb.WriteByte(c)
		}
	}
	return appendStatement(res, sb.String())
}

func appendStatement(stmts []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return stmts
	}
	return append(stmts, s)
}
