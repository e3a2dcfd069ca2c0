package moderation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testClassifier() *Classifier {
	return NewClassifier(
		[]string{"ass", "bastard"},
		[]string{"damn", "hell"},
		[]string{"free nitro", "gift card", "verify now", "click here", "limited time", "claim your", "giveaway", "steam gift", "dm me"},
	)
}

func TestClassifyEmbeddedBannedWordIsClean(t *testing.T) {
	c := testClassifier()
	require.Equal(t, VerdictClean, c.Classify("you dumbclass"))
	require.Equal(t, VerdictClean, c.Classify("first class citizen"))
	require.Equal(t, VerdictClean, c.Classify("assignment due tomorrow"))
}

func TestClassifyStandaloneBannedWord(t *testing.T) {
	c := testClassifier()
	require.Equal(t, VerdictBannedWord, c.Classify("you are an ass!"))
	require.Equal(t, VerdictBannedWord, c.Classify("ass"))
	require.Equal(t, VerdictBannedWord, c.Classify("what an ass, honestly"))
	require.Equal(t, VerdictBannedWord, c.Classify("ASS AT THE START"))
}

func TestClassifyBoundaryRuleBothSides(t *testing.T) {
	c := testClassifier()
	// alphanumeric touching either side defeats the match
	require.Equal(t, VerdictClean, c.Classify("xass"))
	require.Equal(t, VerdictClean, c.Classify("assx"))
	require.Equal(t, VerdictClean, c.Classify("1ass1"))
	// punctuation, whitespace and emoji all count as boundaries
	require.Equal(t, VerdictBannedWord, c.Classify("(ass)"))
	require.Equal(t, VerdictBannedWord, c.Classify("🔥ass🔥"))
}

func TestClassifyLaterOccurrenceStillMatches(t *testing.T) {
	c := testClassifier()
	// first occurrence is embedded, second is standalone
	require.Equal(t, VerdictBannedWord, c.Classify("class act, you ass"))
}

func TestAllowedWordDominatesBanned(t *testing.T) {
	c := testClassifier()
	require.Equal(t, VerdictAllowed, c.Classify("damn, you ass"))
	require.Equal(t, VerdictAllowed, c.Classify("what the hell"))
	// allowed terms also need word boundaries
	require.Equal(t, VerdictBannedWord, c.Classify("hellish ass"))
}

func TestClassifyCleanMessage(t *testing.T) {
	c := testClassifier()
	require.Equal(t, VerdictClean, c.Classify("see everyone at the meeting"))
	require.Equal(t, VerdictClean, c.Classify(""))
}

func TestIsSpamThreshold(t *testing.T) {
	c := testClassifier()

	// 9 phrases configured, threshold = ceil(18/3) = 6
	six := "free nitro gift card verify now click here limited time claim your prize"
	require.True(t, c.IsSpam(six))

	five := "free nitro gift card verify now click here limited time offer"
	require.False(t, c.IsSpam(five))
}

func TestIsSpamMonotonic(t *testing.T) {
	c := testClassifier()

	phrases := []string{"free nitro", "gift card", "verify now", "click here", "limited time", "claim your", "giveaway", "steam gift", "dm me"}
	text := ""
	wasSpam := false
	for _, phrase := range phrases {
		text += phrase + " "
		spam := c.IsSpam(text)
		if wasSpam {
			require.True(t, spam, "adding %q flipped spam back to false", phrase)
		}
		wasSpam = spam
	}
	require.True(t, wasSpam)
}

func TestIsSpamEmptyText(t *testing.T) {
	c := testClassifier()
	require.False(t, c.IsSpam(""))
}

func TestIsSpamCaseInsensitive(t *testing.T) {
	c := testClassifier()
	text := strings.ToUpper("free nitro gift card verify now click here limited time claim your")
	require.True(t, c.IsSpam(text))
}

func TestVerdictString(t *testing.T) {
	require.Equal(t, "clean", VerdictClean.String())
	require.Equal(t, "allowed", VerdictAllowed.String())
	require.Equal(t, "banned_word", VerdictBannedWord.String())
	require.Equal(t, "spam", VerdictSpam.String())
}
