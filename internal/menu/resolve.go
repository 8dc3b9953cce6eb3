package menu

import "streetfeast-web/internal/truck"

// Source says where the displayed menu came from.
type Source string

const (
	SourceOccurrence Source = "occurrence"
	SourceDefault    Source = "default"
	SourceNone       Source = "none"
)

// Resolve returns the categories to display for the selected occurrence.
// An occurrence's own non-empty menu wins over the truck's default menu.
// With neither, the result is an empty, non-nil slice: "no menu available"
// is a normal state, not an error.
func Resolve(selected *truck.Occurrence, defaultMenu *truck.Menu) []truck.Category {
	if selected != nil && selected.HasMenu() {
		return selected.Menu.Categories
	}
	if defaultMenu != nil && len(defaultMenu.Categories) > 0 {
		return defaultMenu.Categories
	}
	return []truck.Category{}
}

// View is the resolved menu plus an image-only fallback.
type View struct {
	Source     Source
	Categories []truck.Category
	ImageURI   string
}

// Empty reports whether there is nothing to show.
func (v View) Empty() bool {
	return len(v.Categories) == 0 && v.ImageURI == ""
}

// ResolveView extends Resolve with menus that are only a photo of a printed
// menu. Category menus are always preferred; the occurrence's image is tried
// before the default menu's image.
func ResolveView(selected *truck.Occurrence, defaultMenu *truck.Menu) View {
	if selected != nil && selected.HasMenu() {
		return View{Source: SourceOccurrence, Categories: selected.Menu.Categories}
	}
	if defaultMenu != nil && len(defaultMenu.Categories) > 0 {
		return View{Source: SourceDefault, Categories: defaultMenu.Categories}
	}
	if selected != nil && selected.Menu != nil && selected.Menu.MenuImageURI != "" {
		return View{Source: SourceOccurrence, Categories: []truck.Category{}, ImageURI: selected.Menu.MenuImageURI}
	}
	if defaultMenu != nil && defaultMenu.MenuImageURI != "" {
		return View{Source: SourceDefault, Categories: []truck.Category{}, ImageURI: defaultMenu.MenuImageURI}
	}
	return View{Source: SourceNone, Categories: []truck.Category{}}
}
