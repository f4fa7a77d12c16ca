package httpapi

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

var (
	//go:embed assets
	assetFiles embed.FS
	//go:embed templates/*.html
	templateFiles embed.FS
)

// assetHandler serves the stylesheet and script; mount it under /assets/.
func assetHandler() http.Handler {
	static, err := fs.Sub(assetFiles, "assets")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(static))
}

// parseTemplates parses the page, form, results, confirm and notices
// templates.
func parseTemplates() *template.Template {
	return template.Must(template.New("pages").ParseFS(templateFiles, "templates/*.html"))
}
