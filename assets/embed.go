package assets

import "embed"

//go:embed index.html
var FS embed.FS

// IndexHTML returns the single-page browser client.
func IndexHTML() ([]byte, error) {
	return FS.ReadFile("index.html")
}
