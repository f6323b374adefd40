package game

// Config holds viewer configuration options.
type Config struct {
	// Seed for teleport target selection. A seed of 0 means a random seed will be generated.
	Seed int64
	// Start is the position the explorer starts on, given as x, y, z.
	Start [3]uint64
}
