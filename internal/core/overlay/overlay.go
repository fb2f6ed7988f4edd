// Package overlay tracks which todo items were toggled or deleted during the
// current session.
package overlay

// Overlay records session-scoped toggle and delete marks by item id. The
// reconciliation core uses it to keep just-toggled items visible in their
// origin list, and to hide deleted items, until the next refresh.
//
// An Overlay shares the reconciliation core's single-writer confinement; it
// is not safe for unsynchronized concurrent writers.
type Overlay struct {
	toggled map[string]struct{}
	deleted map[string]struct{}
}

// New creates an empty overlay.
func New() *Overlay {
	return &Overlay{
		toggled: make(map[string]struct{}),
		deleted: make(map[string]struct{}),
	}
}

// MarkToggled records that the item's done state was flipped this session.
func (o *Overlay) MarkToggled(id string) {
	o.toggled[id] = struct{}{}
}

// UnmarkToggled removes the toggle mark for an item.
func (o *Overlay) UnmarkToggled(id string) {
	delete(o.toggled, id)
}

// FlipToggled inverts the toggle mark, so toggling an item twice in one
// session restores the pre-session view.
func (o *Overlay) FlipToggled(id string) {
	if o.IsToggled(id) {
		o.UnmarkToggled(id)
		return
	}
	o.MarkToggled(id)
}

// MarkDeleted records that the item was deleted this session.
func (o *Overlay) MarkDeleted(id string) {
	o.deleted[id] = struct{}{}
}

// IsToggled reports whether the item was toggled this session.
func (o *Overlay) IsToggled(id string) bool {
	_, ok := o.toggled[id]
	return ok
}

// IsDeleted reports whether the item was deleted this session.
func (o *Overlay) IsDeleted(id string) bool {
	_, ok := o.deleted[id]
	return ok
}

// Clear empties both sets. Called on refresh, the session boundary.
func (o *Overlay) Clear() {
	o.toggled = make(map[string]struct{})
	o.deleted = make(map[string]struct{})
}
