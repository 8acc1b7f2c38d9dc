/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package charades

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const codeSeparator = "-"

var (
	codeAdjectives = []string{
		"brave", "calm", "clever", "cosmic", "cozy", "daring", "eager", "fancy",
		"fuzzy", "gentle", "giddy", "happy", "jolly", "lazy", "lucky", "mighty",
		"noisy", "plucky", "proud", "quick", "quiet", "rapid", "shiny", "silly",
		"sleepy", "sneaky", "spicy", "sunny", "swift", "tiny", "witty", "zany",
	}

	codeColors = []string{
		"amber", "aqua", "azure", "beige", "black", "blue", "coral", "crimson",
		"gold", "green", "indigo", "ivory", "lilac", "orange", "pink", "silver",
	}

	codeNouns = []string{
		"badger", "banjo", "beacon", "biscuit", "canyon", "comet", "cricket", "falcon",
		"ferret", "garden", "goblin", "harbor", "island", "kettle", "lantern", "llama",
		"meadow", "mitten", "noodle", "otter", "panda", "pebble", "pickle", "rocket",
		"saddle", "tiger", "trumpet", "tulip", "walrus", "wizard", "yeti", "zephyr",
	}
)

func pickWord(list []string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	if err != nil {
		return "", err
	}
	return list[n.Int64()], nil
}

// GenerateCode picks an adjective, a color and a noun independently and joins
// them, e.g. "sneaky-amber-otter". Uniqueness is the registry's job.
func GenerateCode() (string, error) {
	parts := make([]string, 0, 3)
	for _, list := range [][]string{codeAdjectives, codeColors, codeNouns} {
		w, err := pickWord(list)
		if err != nil {
			return "", err
		}
		parts = append(parts, w)
	}

	return strings.Join(parts, codeSeparator), nil
}
