package analyzer

// languageByExtension maps source file extensions to language names.
var languageByExtension = map[string]string{
	".go":    "Go",
	".js":    "JavaScript",
	".jsx":   "JavaScript",
	".mjs":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".py":    "Python",
	".rb":    "Ruby",
	".rs":    "Rust",
	".java":  "Java",
	".kt":    "Kotlin",
	".swift": "Swift",
	".c":     "C",
	".h":     "C",
	".cpp":   "C++",
	".cc":    "C++",
	".hpp":   "C++",
	".cs":    "C#",
	".php":   "PHP",
	".scala": "Scala",
	".ex":    "Elixir",
	".exs":   "Elixir",
	".erl":   "Erlang",
	".hs":    "Haskell",
	".lua":   "Lua",
	".r":     "R",
	".sh":    "Shell",
	".bash":  "Shell",
	".sql":   "SQL",
	".html":  "HTML",
	".css":   "CSS",
	".scss":  "CSS",
	".vue":   "Vue",
	".dart":  "Dart",
	".zig":   "Zig",
}
