package frontend

import (
	"errors"
	"strings"

	"github.com/gofiber/template/html/v2"
)

// addTemplateFunctions registers the helpers used by the page templates
func addTemplateFunctions(engine *html.Engine) {
	engine.AddFunc("dict", func(values ...any) (map[string]any, error) {
		if len(values)%2 != 0 {
			return nil, errors.New("invalid dict call")
		}
		dict := make(map[string]any, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				return nil, errors.New("dict keys must be strings")
			}
			dict[key] = values[i+1]
		}
		return dict, nil
	})

	engine.AddFunc("methodClass", MethodClass)

	// pluralize count "endpoint" "endpoints"
	engine.AddFunc("pluralize", func(count int, singular, plural string) string {
		if count == 1 {
			return singular
		}
		return plural
	})

	engine.AddFunc("default", func(value, defaultValue any) any {
		if value == nil || value == "" {
			return defaultValue
		}
		return value
	})
}

// MethodClass maps an HTTP method to its badge class in the docs table
func MethodClass(method string) string {
	switch strings.ToUpper(method) {
	case "GET":
		return "method-get"
	case "POST":
		return "method-post"
	case "PUT", "PATCH":
		return "method-put"
	case "DELETE":
		return "method-delete"
	}
	return "method-other"
}
