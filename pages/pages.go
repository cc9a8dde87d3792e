package pages

import (
	"errors"
	"fmt"

	"github.com/tsawler/pdfimages/core"
)

// maxDepth bounds page tree recursion for malformed trees.
const maxDepth = 64

// Resolver follows indirect references and returns other objects as is.
type Resolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// resolveDict resolves obj and requires a dictionary.
func resolveDict(r Resolver, obj core.Object, what string) (core.Dict, error) {
	v, err := r.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", what, err)
	}
	d, ok := v.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("%s is %T, not a dictionary", what, v)
	}
	return d, nil
}

// Root returns the page tree root named by the catalog's /Pages entry.
func Root(catalog core.Dict, r Resolver) (core.Dict, error) {
	obj := catalog.Get("Pages")
	if obj == nil {
		return nil, errors.New("catalog missing /Pages entry")
	}
	return resolveDict(r, obj, "/Pages")
}

// Tree is a page tree flattened into document order.
type Tree struct {
	pages []*Page
}

// Load walks the page tree below root. Cycles, trees deeper than 64 levels
// and kids that are not dictionaries are errors. The /Count entries are
// ignored, since damaged files often disagree with their own /Kids.
func Load(root core.Dict, r Resolver) (*Tree, error) {
	w := &walker{r: r, seen: make(map[core.IndirectRef]bool)}
	if err := w.visit(root, nil, 0); err != nil {
		return nil, fmt.Errorf("failed to traverse page tree: %w", err)
	}
	return &Tree{pages: w.pages}, nil
}

// Len returns the number of pages.
func (t *Tree) Len() int { return len(t.pages) }

// Pages returns every page in document order.
func (t *Tree) Pages() []*Page { return t.pages }

// Page returns the page at a 0-based index.
func (t *Tree) Page(index int) (*Page, error) {
	if index < 0 || index >= len(t.pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(t.pages))
	}
	return t.pages[index], nil
}

type walker struct {
	r     Resolver
	seen  map[core.IndirectRef]bool
	pages []*Page
}

// visit adds the pages below node. parents lists the Pages nodes above
// node, nearest first.
func (w *walker) visit(node core.Dict, parents []core.Dict, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("page tree deeper than %d levels", maxDepth)
	}

	switch kind := nodeType(node); kind {
	case "Page":
		w.pages = append(w.pages, &Page{dict: node, parents: parents, r: w.r, index: len(w.pages)})
		return nil
	case "Pages":
	default:
		return fmt.Errorf("unexpected page tree node /%s", kind)
	}

	kidsObj := node.Get("Kids")
	if kidsObj == nil {
		return errors.New("Pages node missing /Kids")
	}
	resolved, err := w.r.Resolve(kidsObj)
	if err != nil {
		return fmt.Errorf("failed to resolve /Kids: %w", err)
	}
	kids, ok := resolved.(core.Array)
	if !ok {
		return fmt.Errorf("/Kids is %T, not an array", resolved)
	}

	inner := append([]core.Dict{node}, parents...)
	for i, kid := range kids {
		if ref, ok := kid.(core.IndirectRef); ok {
			if w.seen[ref] {
				return fmt.Errorf("page tree cycle at object %d", ref.Number)
			}
			w.seen[ref] = true
		}

		child, err := resolveDict(w.r, kid, fmt.Sprintf("kid %d", i))
		if err != nil {
			return err
		}
		if err := w.visit(child, inner, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// nodeType returns a node's /Type. Writers sometimes omit it, so a node with
// /Kids counts as Pages and anything else as a Page.
func nodeType(node core.Dict) string {
	if name, ok := node.GetName("Type"); ok {
		return string(name)
	}
	if node.Has("Kids") {
		return "Pages"
	}
	return "Page"
}

// Page is one leaf of the page tree.
type Page struct {
	dict    core.Dict
	parents []core.Dict
	r       Resolver
	index   int
}

// NewPage builds a page outside a tree. parents lists the Pages nodes
// above it, nearest first.
func NewPage(dict core.Dict, parents []core.Dict, r Resolver, index int) *Page {
	return &Page{dict: dict, parents: parents, r: r, index: index}
}

// Index returns the 0-based position of the page in the document.
func (p *Page) Index() int { return p.index }

// Number returns the 1-based page number.
func (p *Page) Number() int { return p.index + 1 }

// Dict returns the page dictionary.
func (p *Page) Dict() core.Dict { return p.dict }

// Inherited returns key from the page or, failing that, from the nearest
// ancestor defining it.
func (p *Page) Inherited(key string) core.Object {
	if obj := p.dict.Get(key); obj != nil {
		return obj
	}
	for _, parent := range p.parents {
		if obj := parent.Get(key); obj != nil {
			return obj
		}
	}
	return nil
}

// Resources returns the page's resource dictionary, which may be inherited.
// A page without resources gets an empty dictionary.
func (p *Page) Resources() (core.Dict, error) {
	obj := p.Inherited("Resources")
	if obj == nil {
		return core.Dict{}, nil
	}

	v, err := p.r.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve /Resources: %w", err)
	}
	switch res := v.(type) {
	case core.Dict:
		return res, nil
	case core.Null:
		return core.Dict{}, nil
	}
	return nil, fmt.Errorf("/Resources is %T, not a dictionary", v)
}

// MediaBox returns the page boundaries [llx lly urx ury], which may be
// inherited.
func (p *Page) MediaBox() ([4]float64, error) {
	var box [4]float64

	obj := p.Inherited("MediaBox")
	if obj == nil {
		return box, errors.New("MediaBox not found")
	}
	v, err := p.r.Resolve(obj)
	if err != nil {
		return box, fmt.Errorf("failed to resolve /MediaBox: %w", err)
	}
	arr, ok := v.(core.Array)
	if !ok || len(arr) != 4 {
		return box, fmt.Errorf("invalid /MediaBox %v", v)
	}

	for i, elem := range arr {
		switch n := elem.(type) {
		case core.Int:
			box[i] = float64(n)
		case core.Real:
			box[i] = float64(n)
		default:
			return box, fmt.Errorf("invalid /MediaBox element %v", elem)
		}
	}
	return box, nil
}
