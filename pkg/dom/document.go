package dom

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/ports"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Region element ids of the page skeleton.
const (
	IDLoading = "loading"
	IDContent = "content"
	IDTitle   = "step-title"
	IDBody    = "step-body"
	IDActions = "step-actions"
)

// ScrollTop is reported by ScrollTarget after ScrollToTop.
const ScrollTop = "#top"

const skeleton = `<!DOCTYPE html><html><head><title></title></head><body>` +
	`<div id="` + IDLoading + `">Loading…</div>` +
	`<main id="` + IDContent + `" hidden>` +
	`<h1 id="` + IDTitle + `"></h1>` +
	`<div id="` + IDBody + `"></div>` +
	`<div id="` + IDActions + `"></div>` +
	`</main></body></html>`

// Document is an in-memory page. Safe for concurrent use.
type Document struct {
	mu sync.Mutex

	root    *html.Node
	loading *html.Node
	content *html.Node
	title   *html.Node
	body    *html.Node
	actions *html.Node

	buttons []domain.Button
	scroll  string
}

var _ ports.Page = (*Document)(nil)

// New creates a document in its initial state: loading visible, content hidden.
func New() *Document {
	root, err := html.Parse(strings.NewReader(skeleton))
	if err != nil {
		panic(fmt.Sprintf("dom: invalid skeleton: %v", err))
	}
	d := &Document{root: root}
	d.loading = findByID(root, IDLoading)
	d.content = findByID(root, IDContent)
	d.title = findByID(root, IDTitle)
	d.body = findByID(root, IDBody)
	d.actions = findByID(root, IDActions)
	return d
}

// SetLoading toggles the loading indicator.
func (d *Document) SetLoading(visible bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	setHidden(d.loading, !visible)
}

// ShowContent reveals the content container.
func (d *Document) ShowContent() {
	d.mu.Lock()
	defer d.mu.Unlock()
	setHidden(d.content, false)
}

// SetTitle replaces the title text (and the document <title>).
func (d *Document) SetTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	replaceText(d.title, title)
	if head := findElement(d.root, atom.Title); head != nil {
		replaceText(head, title)
	}
}

// SetBody parses markup as a fragment of the body region and swaps it in.
func (d *Document) SetBody(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return fmt.Errorf("parse step body: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	removeChildren(d.body)
	for _, n := range nodes {
		d.body.AppendChild(n)
	}
	return nil
}

// QueryClass returns handles to every element carrying class, in document order.
func (d *Document) QueryClass(class string) []ports.ClassList {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []ports.ClassList
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && hasClass(n, class) {
			out = append(out, &classList{doc: d, node: n})
		}
		return true
	})
	return out
}

// SetActions replaces the action area with buttons.
func (d *Document) SetActions(buttons []domain.Button) {
	d.mu.Lock()
	defer d.mu.Unlock()

	removeChildren(d.actions)
	d.buttons = make([]domain.Button, 0, len(buttons))
	for _, b := range buttons {
		b.Classes = append([]string(nil), b.Classes...)
		d.buttons = append(d.buttons, b)

		attrs := []html.Attribute{
			{Key: "type", Val: "button"},
			{Key: "id", Val: b.ID},
			{Key: "class", Val: strings.Join(b.Classes, " ")},
		}
		if b.Disabled {
			attrs = append(attrs, html.Attribute{Key: "disabled"})
		}
		btn := &html.Node{Type: html.ElementNode, Data: "button", DataAtom: atom.Button, Attr: attrs}
		btn.AppendChild(&html.Node{Type: html.TextNode, Data: b.Label})
		d.actions.AppendChild(btn)
	}
}

// ClearActions empties the action area.
func (d *Document) ClearActions() {
	d.mu.Lock()
	defer d.mu.Unlock()
	removeChildren(d.actions)
	d.buttons = nil
}

// EnableAction enables the rendered control with the given id.
func (d *Document) EnableAction(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := -1
	for i, b := range d.buttons {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	b := &d.buttons[idx]
	b.Disabled = false
	for i, c := range b.Classes {
		if c == domain.ClassActionDisabled {
			b.Classes[i] = domain.ClassActionEnabled
		}
	}

	if n := findByID(d.actions, id); n != nil {
		removeAttr(n, "disabled")
		replaceClass(n, domain.ClassActionDisabled, domain.ClassActionEnabled)
	}
	return true
}

// ScrollToTop records a scroll to the top of the page.
func (d *Document) ScrollToTop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scroll = ScrollTop
}

// ScrollIntoView records a scroll to the element with id.
func (d *Document) ScrollIntoView(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if findByID(d.root, id) == nil {
		return false
	}
	d.scroll = id
	return true
}

// Title returns the step title text.
func (d *Document) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return textOf(d.title)
}

// BodyHTML renders the step body region's inner HTML.
func (d *Document) BodyHTML() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return innerHTML(d.body)
}

// HTML renders the whole document.
func (d *Document) HTML() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf bytes.Buffer
	_ = html.Render(&buf, d.root)
	return buf.String()
}

// MainHTML renders the content container, for embedding in a host template.
func (d *Document) MainHTML() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf bytes.Buffer
	_ = html.Render(&buf, d.loading)
	_ = html.Render(&buf, d.content)
	return buf.String()
}

// Buttons returns the rendered controls in order.
func (d *Document) Buttons() []domain.Button {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.Button, len(d.buttons))
	for i, b := range d.buttons {
		b.Classes = append([]string(nil), b.Classes...)
		out[i] = b
	}
	return out
}

// Button returns the rendered control with id.
func (d *Document) Button(id string) (domain.Button, bool) {
	for _, b := range d.Buttons() {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Button{}, false
}

// LoadingVisible reports whether the loading indicator is shown.
func (d *Document) LoadingVisible() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !hasAttr(d.loading, "hidden")
}

// ContentVisible reports whether the content container is shown.
func (d *Document) ContentVisible() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !hasAttr(d.content, "hidden")
}

// ScrollTarget returns the last scroll target (ScrollTop or an element id).
func (d *Document) ScrollTarget() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scroll
}

// classList is a live handle on one element's class attribute.
type classList struct {
	doc  *Document
	node *html.Node
}

func (c *classList) Contains(class string) bool {
	c.doc.mu.Lock()
	defer c.doc.mu.Unlock()
	return hasClass(c.node, class)
}

func (c *classList) Add(class string) {
	c.doc.mu.Lock()
	defer c.doc.mu.Unlock()
	if hasClass(c.node, class) {
		return
	}
	setClasses(c.node, append(classes(c.node), class))
}

func (c *classList) Remove(class string) {
	c.doc.mu.Lock()
	defer c.doc.mu.Unlock()
	removeClass(c.node, class)
}

func (c *classList) Replace(old, new string) bool {
	c.doc.mu.Lock()
	defer c.doc.mu.Unlock()
	return replaceClass(c.node, old, new)
}
