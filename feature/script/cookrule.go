package script

import "content-pipeline/core/cook"

// CookRule cooks a .luac artifact from a .lua source. Compilation proper
// happens in the script runtime; cooking wraps the source in the checksummed
// container so loads and hot reloads treat it like any other artifact.
func CookRule() cook.Rule {
	return cook.Rule{
		SourceExt: ".lua",
		Cook:      Encode,
	}
}
