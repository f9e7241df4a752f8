package menu

import (
	"os"
	"path/filepath"
	"strings"
)

const missingText = "Details coming soon."

// LoadText reads one resource file, trimmed. Missing files fall back to a
// placeholder so an incomplete resources directory never breaks a screen.
func LoadText(dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return missingText
	}
	return strings.TrimSpace(string(data))
}

// Description is the short blurb shown on a service's detail screen.
func Description(dir, key string) string {
	return LoadText(dir, key+"_desc.txt")
}

// Details is the longer text sent when the user asks for more information.
func Details(dir, key string) string {
	return LoadText(dir, key+"_details.txt")
}
