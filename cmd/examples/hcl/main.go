package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/avi3tal/stratagraph/pkg/hclstrategy"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <strategy.hcl>", os.Args[0])
	}

	b, err := hclstrategy.ParseFile(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to load strategy: %v", err)
	}
	b.Get().PrintGraph(os.Stdout)

	program, err := b.EncodeChain()
	if err != nil {
		log.Fatalf("Failed to encode strategy: %v", err)
	}
	out, _ := json.MarshalIndent(program, "", "  ")
	fmt.Printf("\n%s\n", out)
}
