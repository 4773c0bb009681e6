package dom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func findByID(root *html.Node, id string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

func findElement(root *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && n.DataAtom == a {
			found = n
			return false
		}
		return true
	})
	return found
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

func setHidden(n *html.Node, hidden bool) {
	if hidden {
		if !hasAttr(n, "hidden") {
			n.Attr = append(n.Attr, html.Attribute{Key: "hidden"})
		}
		return
	}
	removeAttr(n, "hidden")
}

func classes(n *html.Node) []string {
	return strings.Fields(attr(n, "class"))
}

func setClasses(n *html.Node, list []string) {
	if len(list) == 0 {
		removeAttr(n, "class")
		return
	}
	setAttr(n, "class", strings.Join(list, " "))
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

func removeClass(n *html.Node, class string) {
	list := classes(n)
	kept := list[:0]
	for _, c := range list {
		if c != class {
			kept = append(kept, c)
		}
	}
	setClasses(n, kept)
}

// replaceClass follows DOMTokenList.replace: nothing happens unless old is present.
func replaceClass(n *html.Node, old, new string) bool {
	list := classes(n)
	idx := -1
	for i, c := range list {
		if c == old {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	out := make([]string, 0, len(list))
	for i, c := range list {
		switch {
		case i == idx:
			if !hasToken(out, new) {
				out = append(out, new)
			}
		case c == old || c == new:
			// dropped: already placed at idx
		default:
			out = append(out, c)
		}
	}
	setClasses(n, out)
	return true
}

func hasToken(list []string, tok string) bool {
	for _, c := range list {
		if c == tok {
			return true
		}
	}
	return false
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

func replaceText(n *html.Node, text string) {
	removeChildren(n)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

func innerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}
