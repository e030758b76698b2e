package settings

import (
	"math/rand/v2"
	"slices"
	"strings"
)

// PresetAvatars are the bundled avatar images.
var PresetAvatars = []string{
	"/avatars/avatar1.png",
	"/avatars/avatar2.png",
	"/avatars/avatar3.png",
	"/avatars/avatar4.png",
	"/avatars/avatar5.png",
}

// IsInlineAvatar reports whether src embeds the image as a data URI.
func IsInlineAvatar(src string) bool {
	return strings.HasPrefix(src, "data:")
}

// IsPresetAvatar reports whether src is one of the bundled images.
func IsPresetAvatar(src string) bool {
	return slices.Contains(PresetAvatars, src)
}

// RandomPreset picks one of the bundled images.
func RandomPreset() string {
	return PresetAvatars[rand.IntN(len(PresetAvatars))]
}
