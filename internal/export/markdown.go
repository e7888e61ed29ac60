package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/iksnae/iris-session/internal"
)

// MarkdownExporter renders sessions and labeling progress as Markdown.
// Other values are written as a fenced JSON block.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(v any, w io.Writer) error {
	switch val := v.(type) {
	case *internal.Session:
		return e.exportSession(val, w)
	case *internal.LabelingProgress:
		return e.exportProgress(val, w)
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode value: %w", err)
		}
		_, err = fmt.Fprintf(w, "```json\n%s\n```\n", b)
		return err
	}
}

func (e *MarkdownExporter) exportSession(session *internal.Session, w io.Writer) error {
	if session == nil {
		_, err := fmt.Fprintf(w, "# No session\n")
		return err
	}

	_, _ = fmt.Fprintf(w, "# Session %s\n\n", session.ID)
	writeExtra(w, session.Extra)

	project := session.CurrentProject
	if project == nil {
		_, err := fmt.Fprintf(w, "_No current project._\n")
		return err
	}

	_, _ = fmt.Fprintf(w, "## Project %s\n\n", project.CmID)
	if project.Class != "" {
		_, _ = fmt.Fprintf(w, "**Class:** %s  \n", project.Class)
	}
	writeExtra(w, project.Extra)

	image := project.CurrentImage
	if image == nil {
		_, err := fmt.Fprintf(w, "_No current image._\n")
		return err
	}

	_, _ = fmt.Fprintf(w, "### Image %s\n\n", image.CmID)
	if image.CurrentCmAnnotationID != nil {
		_, _ = fmt.Fprintf(w, "**Current annotation:** %s  \n", *image.CurrentCmAnnotationID)
	} else {
		_, _ = fmt.Fprintf(w, "_No current annotation._  \n")
	}
	writeExtra(w, image.Extra)
	return nil
}

func (e *MarkdownExporter) exportProgress(p *internal.LabelingProgress, w io.Writer) error {
	_, err := fmt.Fprintf(w, "# Labeling progress\n\n**Labeled:** %d / %d (%d%%)\n",
		p.LabeledAnnotations, p.NumberOfAnnotations, p.LabelingProgress)
	return err
}

// writeExtra lists server fields as "**name:** value" lines, sorted by name.
// Null fields are left out.
func writeExtra(w io.Writer, extra map[string]json.RawMessage) {
	keys := make([]string, 0, len(extra))
	for k, raw := range extra {
		if string(bytes.TrimSpace(raw)) != "null" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return
	}
	sort.Strings(keys)

	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "**%s:** %s  \n", escapeMarkdown(k), escapeMarkdown(scalarText(extra[k])))
	}
	_, _ = fmt.Fprintln(w)
}

// scalarText unquotes JSON strings and leaves everything else as JSON
func scalarText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// escapeMarkdown escapes markdown emphasis markers
func escapeMarkdown(text string) string {
	text = strings.ReplaceAll(text, "**", "\\*\\*")
	text = strings.ReplaceAll(text, "__", "\\_\\_")
	return text
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
