// Package usernamegen generates the human-readable handles assigned to
// users on approval.
//
// A handle is {adjective}{animal}{1..999}, each part drawn independently
// and uniformly at random from fixed small word lists. No uniqueness
// check is performed against existing handles.
package usernamegen

import (
	"fmt"
	"math/rand/v2"
)

var adjectives = []string{"happy", "cool", "smart", "funny", "brave", "kind", "wild", "free"}

var animals = []string{"bear", "wolf", "eagle", "lion", "tiger", "fox", "deer", "hawk"}

// Generate returns a new random handle such as "bravefox42".
func Generate() string {
	adjective := adjectives[rand.IntN(len(adjectives))]
	animal := animals[rand.IntN(len(animals))]
	number := rand.IntN(999) + 1
	return fmt.Sprintf("%s%s%d", adjective, animal, number)
}
