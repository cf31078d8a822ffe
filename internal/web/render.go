package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/url"

	"github.com/gofiber/fiber/v2"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"filterURL": filterURL,
}).ParseFS(templatesFS, "templates/*.html"))

// filterURL builds the dashboard link for a category and search query.
func filterURL(categoryID, query string) string {
	v := url.Values{}
	if categoryID != "" {
		v.Set("category", categoryID)
	}
	if query != "" {
		v.Set("q", query)
	}
	if len(v) == 0 {
		return "/"
	}
	return "/?" + v.Encode()
}

func render(c *fiber.Ctx, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}
