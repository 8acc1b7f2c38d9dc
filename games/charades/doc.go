/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package charades implements the game state behind cranium.
//
// Players gather in a session identified by a short code such as
// "brave-coral-otter". One player at a time becomes the guesser, the room picks
// a category, and a countdown starts. Everyone except the guesser sees a word
// to act out; each correct guess or skip draws a new word from the category
// without repeats until the category runs dry. When the round is ended the
// tallies are added to the guesser's totals and the session returns to the
// lobby.
//
// A Registry owns every Session. A Coordinator applies client intents to them
// under each session's lock and reports the outcome through a Gateway. Round
// timers are never scheduled: a scoring action is accepted only while the
// countdown, measured from when it started, has time left.
package charades
