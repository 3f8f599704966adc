package config

const (
	// MaxFolderNameLength is the maximum length for folder names, in characters.
	// Matches the VARCHAR(255) column.
	MaxFolderNameLength = 255

	// MaxCardTitleLength is the maximum length for card titles.
	MaxCardTitleLength = 255

	// MaxReorderBatch caps the number of folders in one reorder request.
	// A single user's sibling list never legitimately approaches this.
	MaxReorderBatch = 1000

	// MaxCardContentBytes caps the serialized card content.
	MaxCardContentBytes = 1 << 20
)
