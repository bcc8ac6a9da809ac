// internal/modality/modality.go
// Package modality buckets model identifiers into output modalities by name.
package modality

import "strings"

// Modality identifies what kind of output a model produces.
type Modality string

const (
	Text  Modality = "text"
	Image Modality = "image"
	Video Modality = "video"
	Audio Modality = "audio"
)

// String returns the modality name.
func (m Modality) String() string { return string(m) }

// Keyword tables for each non-default modality. Entries are matched as
// lower-cased substrings anywhere in the identifier. Extend the tables to
// teach the classifier about new vendors; the matching order lives in
// classifierOrder, not here.
var (
	audioKeywords = []string{
		"elevenlabs", "cartesia", "playai", "play-ai", "hume",
		"tts", "voice", "speech", "audio", "music", "sound",
	}
	videoKeywords = []string{
		"sora", "runway", "veo", "kling", "pika", "hailuo", "luma",
		"dream-machine", "video", "motion", "film", "animate",
	}
	imageKeywords = []string{
		"flux", "imagen", "dall-e", "dalle", "ideogram", "stable-diffusion",
		"sd3", "midjourney", "playground", "recraft", "photon",
		"image", "art", "picture", "draw", "paint",
	}
)

// classifierOrder fixes the match priority. Audio is checked first because
// several audio vendor names contain substrings that would otherwise match the
// video or image tables; video precedes image for the same reason. Do not
// reorder: swapping entries silently reclassifies existing models.
var classifierOrder = []struct {
	modality Modality
	keywords []string
}{
	{Audio, audioKeywords},
	{Video, videoKeywords},
	{Image, imageKeywords},
}

// Classify maps a model identifier to exactly one modality. It is a pure
// function of the identifier string: case-insensitive, no I/O, and total.
// Identifiers matching no table classify as Text.
func Classify(identifier string) Modality {
	name := strings.ToLower(identifier)
	for _, set := range classifierOrder {
		for _, keyword := range set.keywords {
			if strings.Contains(name, keyword) {
				return set.modality
			}
		}
	}
	return Text
}

// All lists every modality in classifier priority order, Text last.
func All() []Modality {
	return []Modality{Audio, Video, Image, Text}
}
