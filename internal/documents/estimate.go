package documents

import "time"

// Duration heuristics used in place of real audio probing. Both drift
// from ground truth for non-English text and variable-bitrate files;
// replace with acoustic measurement before trusting them in anger.
const (
	// Average read-aloud pace for synthesized English speech.
	wordsPerMinute = 150

	// Assumed constant bitrate for uploaded tracks, 128 kbit/s.
	assumedBytesPerSecond = 16000
)

// EstimateTextDuration guesses how long synthesized speech for
// wordCount words will run.
func EstimateTextDuration(wordCount int) time.Duration {
	if wordCount <= 0 {
		return 0
	}
	return time.Duration(wordCount) * time.Minute / wordsPerMinute
}

// EstimateAudioDuration guesses a track's length from its byte size.
func EstimateAudioDuration(sizeBytes int) time.Duration {
	if sizeBytes <= 0 {
		return 0
	}
	return time.Duration(sizeBytes) * time.Second / assumedBytesPerSecond
}
