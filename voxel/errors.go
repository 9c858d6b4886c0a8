package voxel

// Error types attached to errors returned by the voxtree packages.
const (
	// ErrTypeInputFormat marks unparsable meshes, scenes and truncated trees.
	ErrTypeInputFormat = "input-format"
	// ErrTypeCorrupt marks a compressed container that fails to round trip.
	ErrTypeCorrupt = "corrupted-storage"
	// ErrTypePrecondition marks inputs the compiler would reject.
	ErrTypePrecondition = "precondition"
)
