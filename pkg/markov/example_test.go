package markov_test

import (
	"fmt"

	"github.com/CTAG07/kmarkov/pkg/markov"
)

func ExampleModel_SymbolFrequency() {
	m, err := markov.New("banana", 2)
	if err != nil {
		panic(err)
	}
	an, _ := m.SymbolFrequency("an", 'a')
	nb, _ := m.SymbolFrequency("na", 'b')
	na, _ := m.TotalFrequency("na")
	fmt.Println(an, nb, na)
	// Output: 2 1 2
}

func ExampleModel_Generate() {
	m, err := markov.New("abc", 1, markov.WithSeed(1))
	if err != nil {
		panic(err)
	}
	out, err := m.Generate("a", 8)
	fmt.Println(out, err)
	// Output: abcabcab <nil>
}
