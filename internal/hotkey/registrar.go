package hotkey

// Registrar binds combos to callbacks at the OS level.
type Registrar interface {
	// Register binds combo; onTrigger runs on every press.
	Register(combo string, onTrigger func()) error
	// Unregister releases a combo bound by Register.
	Unregister(combo string) error
}

// NopRegistrar accepts every valid combo and never fires.
type NopRegistrar struct{}

func (NopRegistrar) Register(combo string, _ func()) error {
	_, err := Parse(combo)
	return err
}

func (NopRegistrar) Unregister(string) error { return nil }
