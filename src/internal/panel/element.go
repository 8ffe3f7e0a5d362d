// FILE: src/internal/panel/element.go
package panel

import (
	"html"
	"io"
	"strconv"
	"strings"
)

type declaration struct {
	name  string
	value string
}

// Element is a minimal UI element: a tag with ordered inline style, text,
// children and a vertical scroll offset. It is not safe for concurrent use.
type Element struct {
	tag       string
	attrs     []declaration
	style     []declaration
	text      string
	children  []*Element
	parent    *Element
	height    int
	scrollTop int
}

// NewElement creates a detached element
func NewElement(tag string) *Element {
	return &Element{tag: tag}
}

// Tag returns the element's tag name
func (e *Element) Tag() string {
	return e.tag
}

// SetAttr sets an attribute, replacing any previous value
func (e *Element) SetAttr(name, value string) {
	e.attrs = setDeclaration(e.attrs, name, value)
}

// Attr returns an attribute value
func (e *Element) Attr(name string) string {
	return getDeclaration(e.attrs, name)
}

// SetStyle sets one inline style property
func (e *Element) SetStyle(prop, value string) {
	e.style = setDeclaration(e.style, prop, value)
}

// Style returns an inline style property
func (e *Element) Style(prop string) string {
	return getDeclaration(e.style, prop)
}

// SetCSSText replaces the inline style with the declarations in css
func (e *Element) SetCSSText(css string) {
	e.style = nil
	for _, decl := range strings.Split(css, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name != "" {
			e.SetStyle(name, value)
		}
	}
}

// CSSText serializes the inline style
func (e *Element) CSSText() string {
	parts := make([]string, len(e.style))
	for i, d := range e.style {
		parts[i] = d.name + ": " + d.value + ";"
	}
	return strings.Join(parts, " ")
}

// SetText sets the element's text content
func (e *Element) SetText(text string) {
	e.text = text
}

// Text returns the element's own text content
func (e *Element) Text() string {
	return e.text
}

// SetHeight sets the element's rendered height in pixels
func (e *Element) SetHeight(px int) {
	e.height = px
}

// Height returns the rendered height: the explicit height, else the
// "height" style in px, else the sum of the children's heights.
func (e *Element) Height() int {
	if e.height > 0 {
		return e.height
	}
	if px, ok := pixels(e.Style("height")); ok {
		return px
	}
	return e.contentHeight()
}

// AppendChild appends child as the last child, detaching it from any previous parent
func (e *Element) AppendChild(child *Element) {
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = e
	e.children = append(e.children, child)
}

// RemoveChild detaches child; it reports whether child was found
func (e *Element) RemoveChild(child *Element) bool {
	for i, c := range e.children {
		if c == child {
			copy(e.children[i:], e.children[i+1:])
			e.children[len(e.children)-1] = nil
			e.children = e.children[:len(e.children)-1]
			child.parent = nil
			e.SetScrollTop(e.scrollTop)
			return true
		}
	}
	return false
}

// Children returns a copy of the child list
func (e *Element) Children() []*Element {
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

// ChildCount returns the number of children
func (e *Element) ChildCount() int {
	return len(e.children)
}

// FirstChild returns the first child or nil
func (e *Element) FirstChild() *Element {
	if len(e.children) == 0 {
		return nil
	}
	return e.children[0]
}

// LastChild returns the last child or nil
func (e *Element) LastChild() *Element {
	if len(e.children) == 0 {
		return nil
	}
	return e.children[len(e.children)-1]
}

// Parent returns the parent element or nil
func (e *Element) Parent() *Element {
	return e.parent
}

// ClientHeight is the visible height of the element's scroll area
func (e *Element) ClientHeight() int {
	return e.Height()
}

// ScrollHeight is the height of the element's content, never less than its client height
func (e *Element) ScrollHeight() int {
	return max(e.contentHeight(), e.ClientHeight())
}

// MaxScrollTop is the largest valid scroll offset
func (e *Element) MaxScrollTop() int {
	return e.ScrollHeight() - e.ClientHeight()
}

// ScrollTop returns the current scroll offset
func (e *Element) ScrollTop() int {
	return e.scrollTop
}

// SetScrollTop scrolls to top, clamped to [0, MaxScrollTop]
func (e *Element) SetScrollTop(top int) {
	e.scrollTop = min(max(top, 0), e.MaxScrollTop())
}

func (e *Element) contentHeight() int {
	total := 0
	for _, c := range e.children {
		total += c.Height()
	}
	return total
}

// WriteHTML renders the element subtree as escaped HTML
func (e *Element) WriteHTML(w io.Writer) error {
	var b strings.Builder
	e.writeHTML(&b)
	_, err := io.WriteString(w, b.String())
	return err
}

// HTML returns the rendered subtree
func (e *Element) HTML() string {
	var b strings.Builder
	e.writeHTML(&b)
	return b.String()
}

func (e *Element) writeHTML(b *strings.Builder) {
	b.WriteString("<")
	b.WriteString(e.tag)
	for _, a := range e.attrs {
		b.WriteString(" ")
		b.WriteString(a.name)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.value))
		b.WriteString(`"`)
	}
	if len(e.style) > 0 {
		b.WriteString(` style="`)
		b.WriteString(html.EscapeString(e.CSSText()))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	b.WriteString(html.EscapeString(e.text))
	for _, c := range e.children {
		c.writeHTML(b)
	}
	b.WriteString("</")
	b.WriteString(e.tag)
	b.WriteString(">")
}

func setDeclaration(decls []declaration, name, value string) []declaration {
	for i := range decls {
		if decls[i].name == name {
			decls[i].value = value
			return decls
		}
	}
	return append(decls, declaration{name: name, value: value})
}

func getDeclaration(decls []declaration, name string) string {
	for _, d := range decls {
		if d.name == name {
			return d.value
		}
	}
	return ""
}

func pixels(v string) (int, bool) {
	v = strings.TrimSpace(v)
	if !strings.HasSuffix(v, "px") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(v, "px")))
	if err != nil {
		return 0, false
	}
	return n, true
}
