package importer

import (
	"io"
	"strconv"
	"strings"

	"github.com/nikbrunner/markdex/internal/model"
	"golang.org/x/net/html"
)

// ParseHTMLBookmarks parses Netscape bookmark HTML into a nested item tree.
func ParseHTMLBookmarks(r io.Reader) ([]*model.Item, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var root []*model.Item

	// Track current folder stack for hierarchy
	var folderStack []*model.Item
	var pendingFolder *model.Item // folder waiting to be pushed on next DL

	appendItem := func(it *model.Item) {
		if len(folderStack) > 0 {
			parent := folderStack[len(folderStack)-1]
			parent.Children = append(parent.Children, it)
		} else {
			root = append(root, it)
		}
	}

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				// Folder definition - get title from text content
				title := getTextContent(n)
				if title != "" {
					folder := model.NewFolder(model.NewFolderParams{Title: title})
					if addDate := getAttr(n, "add_date"); addDate != "" {
						if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
							folder.CreatedAt = ts * 1000
						}
					}
					appendItem(folder)

					// Push when we see the folder's DL
					pendingFolder = folder
				}
				return // Don't recurse into H3

			case "a":
				// Bookmark definition
				href := getAttr(n, "href")
				if href == "" {
					// Skip bookmarks without URL
					return
				}

				title := getTextContent(n)
				if title == "" {
					title = href // fallback to URL as title
				}

				bookmark := model.NewBookmark(model.NewBookmarkParams{
					Title: title,
					URL:   href,
					Tags:  splitTags(getAttr(n, "tags")),
				})
				if addDate := getAttr(n, "add_date"); addDate != "" {
					if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
						bookmark.CreatedAt = ts * 1000
					}
				}
				if icon := getAttr(n, "icon"); icon != "" {
					bookmark.Favicon = icon
				}

				appendItem(bookmark)
				return // Don't recurse into A

			case "hr":
				// Separator between entries
				appendItem(model.NewSeparator())
				return

			case "dl":
				// Definition list - marks folder contents
				// If we have a pending folder, push it now
				pushedFolder := false
				if pendingFolder != nil {
					folderStack = append(folderStack, pendingFolder)
					pendingFolder = nil
					pushedFolder = true
				}

				// Process children
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				// Pop if we pushed
				if pushedFolder && len(folderStack) > 0 {
					folderStack = folderStack[:len(folderStack)-1]
				}
				return // Don't recurse further, we handled children
			}
		}

		// Recurse into children
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return root, nil
}

// splitTags parses the comma-separated TAGS attribute some browsers export.
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
