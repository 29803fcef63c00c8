package persist

// DefaultKeyPrefix namespaces every key written by the workspace.
const DefaultKeyPrefix = "mdstudio-"

// Keys holds the fully qualified store keys.
type Keys struct {
	Files          string
	ActiveID       string
	LegacyContent  string
	LegacyFilename string
	Theme          string
}

// NewKeys builds the key set for prefix.
func NewKeys(prefix string) Keys {
	return Keys{
		Files:          prefix + "files",
		ActiveID:       prefix + "activeId",
		LegacyContent:  prefix + "content",
		LegacyFilename: prefix + "filename",
		Theme:          prefix + "theme",
	}
}

// DefaultKeys returns the key set for DefaultKeyPrefix.
func DefaultKeys() Keys {
	return NewKeys(DefaultKeyPrefix)
}
