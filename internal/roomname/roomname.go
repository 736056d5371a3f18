// Package roomname generates memorable room names such as
// "brisk-otter-ramen-luna" for peers that do not pick one.
package roomname

import (
	"crypto/rand"
	"math/big"
	"strings"
)

var (
	moods = []string{
		"brisk", "calm", "cosy", "eager", "fuzzy", "gentle", "jolly", "lucky", "mellow", "nimble",
		"quiet", "rapid", "sunny", "tidy", "vivid", "witty", "zesty", "bold", "breezy", "cheery",
	}
	creatures = []string{
		"otter", "panda", "koala", "heron", "lynx", "badger", "gecko", "marten", "puffin", "walrus",
		"ibis", "newt", "orca", "stoat", "tapir", "wombat", "yak", "quokka", "vole", "egret",
	}
	foods = []string{
		"ramen", "taco", "waffle", "pierogi", "gnocchi", "falafel", "samosa", "dumpling", "paella", "churro",
		"bagel", "crepe", "mochi", "pretzel", "risotto", "scone", "tamale", "udon", "kimchi", "baklava",
	}
	names = []string{
		"luna", "finn", "isla", "kai", "mira", "otto", "remy", "sage", "theo", "wren",
		"ada", "bo", "cleo", "dax", "eli", "ivy", "juno", "nico", "pia", "zed",
	}
)

var lists = [][]string{moods, creatures, foods, names}

// Generate returns a hyphen-joined name with one word from each list.
func Generate() string {
	words := make([]string, len(lists))
	for i, l := range lists {
		words[i] = l[randomIndex(len(l))]
	}
	return strings.Join(words, "-")
}

func randomIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("roomname: crypto/rand failed: " + err.Error())
	}
	return int(v.Int64())
}
