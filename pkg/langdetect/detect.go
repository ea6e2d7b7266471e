// Package langdetect maps file names to candidate language tags. It
// uses go-enry's linguist data to recognize shebangs, well-known file
// names, and extensions, and normalizes the results to the lowercase
// tags grammar scopes are named by (scope "source.<tag>").
package langdetect

import (
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// aliases maps enry's display names to the tags grammars actually use.
var aliases = map[string]string{
	"c++":         "cpp",
	"c#":          "cs",
	"objective-c": "objc",
	"shell":       "bash",
	"viml":        "vim",
	"batchfile":   "bat",
	"docker":      "dockerfile",
}

// Tags returns candidate language tags for a file, most reliable
// first: shebang interpreter, then exact file name, then extension.
// Duplicates and the generic "text" catch-all are dropped.
func Tags(filename, firstLine string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(lang string, ok bool) {
		if !ok || lang == "" {
			return
		}
		tag := normalize(lang)
		if tag == "text" || seen[tag] {
			return
		}
		seen[tag] = true
		out = append(out, tag)
	}

	lang, ok := enry.GetLanguageByShebang([]byte(firstLine))
	add(lang, ok)
	lang, ok = enry.GetLanguageByFilename(filename)
	add(lang, ok)
	lang, ok = enry.GetLanguageByExtension(filename)
	add(lang, ok)
	return out
}

// normalize converts an enry language name to a grammar scope tag.
func normalize(lang string) string {
	tag := strings.ToLower(lang)
	if alias, ok := aliases[tag]; ok {
		return alias
	}
	return tag
}
