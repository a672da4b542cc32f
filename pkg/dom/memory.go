package dom

import (
	"context"
	"strings"
	"sync"
)

// MemoryElement is an element of a MemoryDocument.
type MemoryElement struct {
	doc *MemoryDocument
	id  string

	mu     sync.Mutex
	html   string
	writes int
}

// ID returns the element id, empty for the body.
func (e *MemoryElement) ID() string { return e.id }

// HTML returns the current content.
func (e *MemoryElement) HTML() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.html
}

// Writes returns how many times content was committed.
func (e *MemoryElement) Writes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writes
}

// Content implements Target. A canceled ctx leaves the element untouched.
func (e *MemoryElement) Content(ctx context.Context, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.doc.isDetached() {
		return ErrDetached
	}
	e.mu.Lock()
	e.html = html
	e.writes++
	e.mu.Unlock()
	if e.doc.onContent != nil {
		e.doc.onContent(e, html)
	}
	return nil
}

// group writes the same content to several elements.
type group []*MemoryElement

func (g group) Content(ctx context.Context, html string) error {
	for _, el := range g {
		if err := el.Content(ctx, html); err != nil {
			return err
		}
	}
	return nil
}

// MemoryOption configures a MemoryDocument.
type MemoryOption func(*MemoryDocument)

// OnContent registers fn to observe every committed write.
func OnContent(fn func(el *MemoryElement, html string)) MemoryOption {
	return func(d *MemoryDocument) {
		d.onContent = fn
	}
}

// MemoryDocument is a Document kept in memory. It always has a body;
// elements with ids are created by NewMemoryDocument or Add.
type MemoryDocument struct {
	mu        sync.RWMutex
	body      *MemoryElement
	byID      map[string]*MemoryElement
	selectors map[string][]*MemoryElement
	detached  bool
	onContent func(el *MemoryElement, html string)
}

// NewMemoryDocument creates a document with an element for each id.
func NewMemoryDocument(ids []string, opts ...MemoryOption) *MemoryDocument {
	d := &MemoryDocument{
		byID:      make(map[string]*MemoryElement),
		selectors: make(map[string][]*MemoryElement),
	}
	d.body = &MemoryElement{doc: d}
	for _, opt := range opts {
		opt(d)
	}
	for _, id := range ids {
		d.Add(id)
	}
	return d
}

// Add creates the element with the given id, or returns the existing one.
func (d *MemoryDocument) Add(id string) *MemoryElement {
	id = strings.TrimPrefix(id, "#")
	d.mu.Lock()
	defer d.mu.Unlock()
	if el, ok := d.byID[id]; ok {
		return el
	}
	el := &MemoryElement{doc: d, id: id}
	d.byID[id] = el
	return el
}

// Register binds a selector to elements. Later registrations replace
// earlier ones.
func (d *MemoryDocument) Register(selector string, els ...*MemoryElement) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selectors[selector] = els
}

// Body returns the body element.
func (d *MemoryDocument) Body() *MemoryElement {
	return d.body
}

// Element returns the element with the given id.
func (d *MemoryDocument) Element(id string) (*MemoryElement, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	el, ok := d.byID[strings.TrimPrefix(id, "#")]
	return el, ok
}

// Target implements Document.
func (d *MemoryDocument) Target(selector string) (Target, error) {
	selector = strings.TrimSpace(selector)
	if selector == Body {
		return d.body, nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if strings.HasPrefix(selector, "#") {
		if el, ok := d.byID[selector[1:]]; ok {
			return el, nil
		}
		return nil, UnknownSelector(selector)
	}
	if els := d.selectors[selector]; len(els) > 0 {
		if len(els) == 1 {
			return els[0], nil
		}
		return group(els), nil
	}
	return nil, UnknownSelector(selector)
}

// Detach makes every later write fail with ErrDetached.
func (d *MemoryDocument) Detach() {
	d.mu.Lock()
	d.detached = true
	d.mu.Unlock()
}

func (d *MemoryDocument) isDetached() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.detached
}
