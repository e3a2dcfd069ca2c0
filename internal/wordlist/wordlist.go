// Package wordlist holds the static term sets used by the moderation
// classifier. All entries are lowercase and immutable at runtime.
package wordlist

// Banned terms are removed when they appear as standalone words. The
// classifier deliberately lets them pass when embedded inside longer
// words ("class" is not a hit for "ass").
var Banned = []string{
	"ass",
	"bastard",
	"bitch",
	"dumbass",
	"jackass",
	"slut",
	"whore",
}

// Allowed terms exempt a message from the banned-word check entirely.
var Allowed = []string{
	"crap",
	"damn",
	"dang",
	"heck",
	"hell",
}

// Spam phrases. A message matching at least two thirds of these is
// treated as a scam broadcast. Phrases may be multi-word; matching is
// plain substring containment.
var Spam = []string{
	"free nitro",
	"gift card",
	"verify now",
	"click here",
	"limited time",
	"claim your",
	"giveaway",
	"steam gift",
	"dm me",
}
