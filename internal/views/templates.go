package views

import (
	"embed"
	"html/template"
	"io/fs"
	"log"
	"path"
)

//go:embed templates/*.tmpl
var tplFS embed.FS

// one compiled set per page (key = page file name, e.g. "overview.tmpl")
type pageTemplates map[string]*template.Template

func parseTemplates() pageTemplates {
	all, err := fs.Glob(tplFS, "templates/*.tmpl")
	if err != nil {
		log.Fatalf("views: glob templates failed: %v", err)
	}
	if len(all) == 0 {
		log.Fatalf("views: no templates found in embed FS")
	}

	// each page gets its own layout + page pair
	out := make(pageTemplates)
	for _, f := range all {
		if path.Base(f) == "layout.tmpl" {
			continue
		}
		t := template.New("layout")
		if _, err := t.ParseFS(tplFS, "templates/layout.tmpl"); err != nil {
			log.Fatalf("views: parse layout.tmpl: %v", err)
		}
		if _, err := t.ParseFS(tplFS, f); err != nil {
			log.Fatalf("views: parse %s: %v", f, err)
		}
		out[path.Base(f)] = t
	}
	return out
}
