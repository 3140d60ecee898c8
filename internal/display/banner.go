package display

import (
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
)

const bannerArt = `
   ____  _   _       _     _  __ _
  / __ \| | | |     | |   (_)/ _| |
 | |  | | |_| |_ ___| |    _| |_| |_
 | |  | | __| __/ _ \ |   | |  _| __|
 | |__| | |_| || (_) | |___| | | | |_
  \____/ \__|\__\___/|_____|_|_|  \__|
`

// RenderBanner returns the banner art horizontally centred for the
// current terminal width.
func RenderBanner() string {
	return centre(bannerArt, termWidth())
}

func centre(art string, width int) string {
	lines := strings.Split(strings.Trim(art, "\n"), "\n")

	maxW := 0
	for _, l := range lines {
		if len(l) > maxW {
			maxW = len(l)
		}
	}

	var b strings.Builder
	for _, l := range lines {
		if width > maxW {
			b.WriteString(strings.Repeat(" ", (width-maxW)/2))
		}
		b.WriteString(BannerStyle.Render(l))
		b.WriteByte('\n')
	}
	return b.String()
}

// termWidth returns the current terminal column count, or 80 as fallback.
func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}
