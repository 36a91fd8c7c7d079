package chart

import "embed"

//go:generate sh -c "curl -sSfL -o assets/echarts.min.js https://cdn.jsdelivr.net/npm/echarts@$(cat assets/VERSION)/dist/echarts.min.js"

//go:embed assets
var assets embed.FS

const scriptAsset = "assets/echarts.min.js"

// EmbeddedScript returns the echarts library compiled into the binary, or nil
// when go generate has not fetched it yet.
func EmbeddedScript() []byte {
	script, err := assets.ReadFile(scriptAsset)
	if err != nil {
		return nil
	}

	return script
}
