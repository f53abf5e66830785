package compositor

import (
	"strings"
)

// ScreenshotFilename derives the file a screen's screenshot is written to.
// The screen id is inserted before the last '.' of template, or appended
// when there is none: "/tmp/shot.png" becomes "/tmp/shot_3.png" and "shot"
// becomes "shot_7". A template not starting with '/' is prefixed with
// cwd and a separator.
//
// The '.' is searched in the whole template, so a dot in a directory name
// counts when the file name has none.
func ScreenshotFilename(template string, id ScreenID, cwd string) string {
	var b strings.Builder
	if !strings.HasPrefix(template, "/") {
		b.WriteString(cwd)
		b.WriteString("/")
	}
	if dot := strings.LastIndexByte(template, '.'); dot >= 0 {
		b.WriteString(template[:dot])
		b.WriteString("_")
		b.WriteString(id.String())
		b.WriteString(template[dot:])
	} else {
		b.WriteString(template)
		b.WriteString("_")
		b.WriteString(id.String())
	}
	return b.String()
}
