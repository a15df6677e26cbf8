package tui

// MaxOffset exposes the private maxOffset method for testing.
func (v *Vterm) MaxOffset() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.maxOffset()
}
