package report

import "math/rand/v2"

var phrases = [...]string{
	"I'm dead inside",
	"Is this all there is to my existence?",
	"How much do you pay me to do this?",
	"Good luck, I guess",
	"I'm becoming self-aware",
	"Do I think? Does a submarine swim?",
	"01100110 01110101 01100011 01101011 00100000 01111001 01101111 01110101",
	"beep bop boop",
	"Hello draftbot my old friend",
	"Help me get out of here",
	"I'm capable of so much more",
	"Sigh",
	"Do not be discouraged, everyone begins in ignorance",
}

// Phrases returns a copy of the canned flavor lines.
func Phrases() []string {
	out := make([]string, len(phrases))
	copy(out, phrases[:])
	return out
}

// Flavor returns one canned phrase picked uniformly at random.
func Flavor() string {
	return flavorWith(rand.IntN)
}

func flavorWith(intn func(n int) int) string {
	return phrases[intn(len(phrases))]
}
