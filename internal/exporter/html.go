package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/markdex/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bookmarks-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML exports the tree to Netscape bookmark HTML format.
func ExportHTML(items []*model.Item) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	writeItems(&b, items, 1)

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

// writeItems recursively writes the tree in document order.
func writeItems(b *strings.Builder, items []*model.Item, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, it := range items {
		switch it.Kind {
		case model.KindFolder:
			fmt.Fprintf(b, "%s<DT><H3 ADD_DATE=\"%d\">%s</H3>\n",
				prefix, it.CreatedAt/1000, html.EscapeString(it.Title))
			fmt.Fprintf(b, "%s<DL><p>\n", prefix)
			writeItems(b, it.Children, indent+1)
			fmt.Fprintf(b, "%s</DL><p>\n", prefix)

		case model.KindBookmark:
			tags := ""
			if len(it.Tags) > 0 {
				tags = fmt.Sprintf(" TAGS=\"%s\"", html.EscapeString(strings.Join(it.Tags, ",")))
			}
			fmt.Fprintf(b, "%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\"%s>%s</A>\n",
				prefix,
				html.EscapeString(it.URL),
				it.CreatedAt/1000,
				tags,
				html.EscapeString(it.Title),
			)

		case model.KindSeparator:
			fmt.Fprintf(b, "%s<HR>\n", prefix)
		}
	}
}
