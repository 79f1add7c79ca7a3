package models

import "fmt"

// Channel identifies an external publishing channel.
type Channel string

const (
	ChannelFacebook      Channel = "facebook"
	ChannelInstagram     Channel = "instagram"
	ChannelLinkedIn      Channel = "linkedin"
	ChannelPinterest     Channel = "pinterest"
	ChannelTwitter       Channel = "twitter"
	ChannelTelegram      Channel = "telegram"
	ChannelYouTubeShorts Channel = "youtube_shorts"
	ChannelTikTok        Channel = "tiktok"
)

// CaptionKind groups channels by the tone of caption they receive.
type CaptionKind string

const (
	CaptionKindImage        CaptionKind = "image"        // Image-first social channels
	CaptionKindLink         CaptionKind = "link"         // Short text/link channels
	CaptionKindProfessional CaptionKind = "professional" // Professional-tone channels
)

// AllChannels lists every channel the dispatch registry knows about,
// in the order the standard run dispatches them.
var AllChannels = []Channel{
	ChannelFacebook,
	ChannelInstagram,
	ChannelLinkedIn,
	ChannelPinterest,
	ChannelTwitter,
	ChannelTelegram,
	ChannelYouTubeShorts,
	ChannelTikTok,
}

// CaptionKind returns the caption style a channel expects.
func (c Channel) CaptionKind() CaptionKind {
	switch c {
	case ChannelTwitter, ChannelTelegram:
		return CaptionKindLink
	case ChannelLinkedIn:
		return CaptionKindProfessional
	default:
		return CaptionKindImage
	}
}

// RequiresVideo reports whether the channel cannot publish without a
// resolved video URL.
func (c Channel) RequiresVideo() bool {
	return c == ChannelYouTubeShorts || c == ChannelTikTok
}

// AcceptsFallbackVideo reports whether the channel prefers the tenant's
// generic fallback video over images when one is configured.
func (c Channel) AcceptsFallbackVideo() bool {
	return c == ChannelFacebook
}

// ValidateChannel returns a typed error for unknown channel identifiers.
func ValidateChannel(c Channel) error {
	for _, known := range AllChannels {
		if c == known {
			return nil
		}
	}
	return fmt.Errorf("unknown channel: %s", c)
}
