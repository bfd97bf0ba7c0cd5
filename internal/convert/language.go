package convert

import "strings"

// DefaultLanguage is used when a fence has no usable language tag.
const DefaultLanguage = "plain text"

var supportedLanguages = map[string]struct{}{
	"python": {}, "javascript": {}, "typescript": {}, "java": {}, "c": {},
	"cpp": {}, "c++": {}, "csharp": {}, "c#": {}, "ruby": {}, "go": {},
	"rust": {}, "kotlin": {}, "swift": {}, "objectivec": {}, "objective-c": {},
	"scala": {}, "shell": {}, "bash": {}, "powershell": {}, "sql": {},
	"html": {}, "css": {}, "scss": {}, "sass": {}, "less": {}, "xml": {},
	"json": {}, "yaml": {}, "toml": {}, "markdown": {}, "latex": {},
	"plaintext": {}, "plain text": {}, "dart": {}, "elixir": {}, "elm": {},
	"erlang": {}, "f#": {}, "fsharp": {}, "haskell": {}, "julia": {},
	"lua": {}, "perl": {}, "php": {}, "r": {}, "solidity": {}, "mermaid": {},
	"graphql": {}, "docker": {}, "makefile": {}, "diff": {}, "protobuf": {},
	"webassembly": {}, "notion formula": {}, "clojure": {}, "coffeescript": {},
	"lisp": {}, "matlab": {}, "mathematica": {}, "nix": {}, "ocaml": {},
	"racket": {}, "reason": {}, "scheme": {}, "smalltalk": {}, "vb.net": {},
	"verilog": {}, "vhdl": {}, "visual basic": {},
}

var languageAliases = map[string]string{
	"py":         "python",
	"js":         "javascript",
	"ts":         "typescript",
	"sh":         "shell",
	"yml":        "yaml",
	"md":         "markdown",
	"dockerfile": "docker",
	"makefile":   "makefile",
	"make":       "makefile",
	"proto":      "protobuf",
	"wasm":       "webassembly",
	"fs":         "f#",
	"ex":         "elixir",
	"erl":        "erlang",
	"hs":         "haskell",
	"jl":         "julia",
	"ml":         "ocaml",
	"rkt":        "racket",
	"scm":        "scheme",
	"sol":        "solidity",
}

// MapLanguage normalises a fence language tag to one the Notion API
// accepts. Unknown tags fall back to plain text.
func MapLanguage(lang string) string {
	if lang == "" {
		return DefaultLanguage
	}
	lower := strings.ToLower(lang)
	if _, ok := supportedLanguages[lower]; ok {
		return lower
	}
	if mapped, ok := languageAliases[lower]; ok {
		return mapped
	}
	return DefaultLanguage
}
