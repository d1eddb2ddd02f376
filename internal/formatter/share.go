package formatter

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/soundslate/internal/models"
	"github.com/desertthunder/soundslate/internal/shared"
)

// InstagramInstruction is shown instead of a link; Instagram has no web share intent.
const InstagramInstruction = "Share to Instagram: Screenshot your stats and upload to Instagram Stories!"

// ShareTarget is one entry of the share menu. URL is empty for targets that
// only show an instruction.
type ShareTarget struct {
	Platform    string `json:"platform"`
	Label       string `json:"label"`
	URL         string `json:"url,omitempty"`
	Instruction string `json:"instruction,omitempty"`
}

// ShareText is the message posted with a share link.
func ShareText(tab models.Tab) string {
	return fmt.Sprintf("Check out my top %s on %s! 🎵", tab, shared.AppName)
}

// ShareTargets builds the share menu for the list on tab. appURL is the
// public origin of the app.
func ShareTargets(appURL string, tab models.Tab) []ShareTarget {
	appURL = strings.TrimRight(appURL, "/")
	text := ShareText(tab)

	return []ShareTarget{
		{
			Platform: "twitter",
			Label:    "Share on Twitter",
			URL:      "https://twitter.com/intent/tweet?text=" + escape(text) + "&url=" + escape(appURL),
		},
		{
			Platform: "whatsapp",
			Label:    "Share on WhatsApp",
			URL:      "https://wa.me/?text=" + escape(appURL+" - "+text),
		},
		{
			Platform:    "instagram",
			Label:       "Share on Instagram",
			Instruction: InstagramInstruction,
		},
	}
}

// escape percent-encodes s for use as a query value, spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
