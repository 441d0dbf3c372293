package notifications

import (
	"fmt"
	"io"

	"github.com/valyala/fasttemplate"
)

const (
	tagStart = "{"
	tagEnd   = "}"
)

type rendered struct {
	Title   string
	Message string
	Link    *string
}

// render substitutes payload fields into the rule templates. A tag that names
// no payload field fails the whole rule.
func render(rule Rule, fields map[string]string) (rendered, error) {
	title, err := renderTemplate(rule.Title, fields)
	if err != nil {
		return rendered{}, fmt.Errorf("title: %w", err)
	}
	message, err := renderTemplate(rule.Message, fields)
	if err != nil {
		return rendered{}, fmt.Errorf("message: %w", err)
	}
	out := rendered{Title: title, Message: message}
	if rule.Link != "" {
		link, err := renderTemplate(rule.Link, fields)
		if err != nil {
			return rendered{}, fmt.Errorf("link: %w", err)
		}
		out.Link = &link
	}
	return out, nil
}

func renderTemplate(template string, fields map[string]string) (string, error) {
	return fasttemplate.ExecuteFuncStringWithErr(template, tagStart, tagEnd, func(w io.Writer, tag string) (int, error) {
		value, ok := fields[tag]
		if !ok {
			return 0, fmt.Errorf("unknown template field %q", tag)
		}
		return w.Write([]byte(value))
	})
}
