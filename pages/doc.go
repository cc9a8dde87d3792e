// Package pages flattens a PDF page tree and gives each page access to its
// inherited attributes.
//
//	root, err := pages.Root(catalog, resolver)
//	tree, err := pages.Load(root, resolver)
//	for _, page := range tree.Pages() {
//	    resources, err := page.Resources()
//	}
//
// Indirect references are followed through the [Resolver] the caller
// supplies, normally the document reader.
package pages
