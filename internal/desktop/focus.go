package desktop

// FocusStack records paint order. The last entry is topmost; an id appears at
// most once.
type FocusStack struct {
	ids  []AppID
	base int
}

// NewFocusStack creates an empty stack whose bottom entry paints at base.
func NewFocusStack(base int) *FocusStack {
	return &FocusStack{base: base}
}

// Focus moves id to the top, inserting it if absent.
func (s *FocusStack) Focus(id AppID) {
	s.Remove(id)
	s.ids = append(s.ids, id)
}

// Remove drops id from the stack. Missing ids are ignored.
func (s *FocusStack) Remove(id AppID) {
	for i, entry := range s.ids {
		if entry == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

// ZIndex returns the paint index of id.
func (s *FocusStack) ZIndex(id AppID) (int, bool) {
	for i, entry := range s.ids {
		if entry == id {
			return s.base + i, true
		}
	}
	return 0, false
}

// IDs returns a copy of the stack, bottom first.
func (s *FocusStack) IDs() []AppID {
	out := make([]AppID, len(s.ids))
	copy(out, s.ids)
	return out
}
