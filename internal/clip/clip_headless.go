package clip

// headlessBackend is a no-op clipboard backend for environments without a
// display server. It always reads as empty.
type headlessBackend struct{}

// Headless returns the no-op backend.
func Headless() Backend { return headlessBackend{} }

func (headlessBackend) Name() string          { return "headless (no-op)" }
func (headlessBackend) Read() ([]Item, error) { return nil, nil }
