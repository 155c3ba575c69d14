package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "crev"

	// ConfigFileName is the default config file name
	ConfigFileName = ".crev.yaml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "CREV"
)

// Output format constants
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

// SupportedExtensions are the file extensions collected during a
// directory walk when the user does not restrict them.
var SupportedExtensions = []string{
	".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs",
	".py", ".go", ".java", ".rb", ".php", ".cs",
	".c", ".h", ".cpp", ".hpp", ".rs", ".kt", ".swift",
}

// ExcludedDirectories are never descended into during a walk
var ExcludedDirectories = []string{
	"node_modules",
	".git",
	"dist",
	"build",
	"out",
	".vscode",
	".idea",
	"vendor",
	"coverage",
	".cache",
	".next",
	".nuxt",
}
