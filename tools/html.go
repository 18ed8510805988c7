package tools

import (
	"fmt"
	"html"
	"io"

	"github.com/Comcast/fsm/core"

	md "github.com/russross/blackfriday/v2"
)

// RenderConfigHTML writes an HTML table that documents the given
// configuration.  Docs are rendered as markdown.  States appear in
// configuration order, and each state lists its transitions (sorted
// by event) with links to the targets.
func RenderConfigHTML(c *core.Config, out io.Writer) error {
	spec, err := core.NewSpec(c)
	if err != nil {
		return err
	}

	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	esc := html.EscapeString

	if doc := spec.Doc(""); doc != "" {
		f(`<div class="configDoc doc">%s</div>`, md.Run([]byte(doc)))
	}

	f(`<div class="states"><table>`)
	for _, id := range spec.StateIds() {
		class := "state"
		if id == spec.InitialState() {
			class += " initial"
		}
		f(`<tr class="%s"><td><span id="%s" class="stateName">%s</span></td><td>`, class, esc(id), esc(id))

		if doc := spec.Doc(id); doc != "" {
			f(`<div class="stateDoc doc">%s</div>`, md.Run([]byte(doc)))
		}

		ts, _ := spec.TransitionsOf(id)
		if events := spec.Events(id); 0 < len(events) {
			f(`<table class="transitions">`)
			for _, event := range events {
				target := ts[event]
				link := `<code>` + esc(target) + `</code>`
				if spec.Has(target) {
					link = `<a href="#` + esc(target) + `">` + link + `</a>`
				}
				f(`<tr><td class="event"><code>%s</code></td><td class="target">%s</td></tr>`, esc(event), link)
			}
			f(`</table>`)
		}
		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}

// RenderConfigPage wraps RenderConfigHTML in a complete page.
func RenderConfigPage(c *core.Config, out io.Writer, cssFiles []string) error {
	if c == nil {
		return &core.InvalidArgument{Arg: "configuration"}
	}

	if cssFiles == nil {
		cssFiles = []string{"/static/config-html.css"}
	}

	title := c.Name
	if title == "" {
		title = "machine"
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, html.EscapeString(title))

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, html.EscapeString(title))

	if err := RenderConfigHTML(c, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderConfigPage reads a configuration file and renders it.
func ReadAndRenderConfigPage(filename string, cssFiles []string, out io.Writer) error {
	c, err := core.ReadConfig(filename)
	if err != nil {
		return err
	}
	return RenderConfigPage(c, out, cssFiles)
}
