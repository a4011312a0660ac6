package api_test

import (
	"fmt"
	"log"

	"github.com/whit3rabbit/jsmixer/internal/config"
	"github.com/whit3rabbit/jsmixer/pkg/api"
)

// Example shows basic usage of the JavaScript obfuscator library.
func Example() {
	config.Testing = true
	defer func() { config.Testing = false }()

	obf, err := api.NewObfuscator(api.Options{
		Silent: true,
	})
	if err != nil {
		log.Fatalf("Failed to create obfuscator: %v", err)
	}

	_, err = obf.ObfuscateCode("var greeting = 'Hello World';")
	if err != nil {
		log.Fatalf("Failed to obfuscate code: %v", err)
	}

	fmt.Println("JavaScript code was successfully obfuscated")

	// Output: JavaScript code was successfully obfuscated
}

// ExampleObfuscator_LookupObfuscatedName demonstrates resolving an
// original identifier to its scrambled form after obfuscation.
func ExampleObfuscator_LookupObfuscatedName() {
	config.Testing = true
	defer func() { config.Testing = false }()

	obf, err := api.NewObfuscator(api.Options{
		Silent: true,
	})
	if err != nil {
		log.Fatalf("Failed to create obfuscator: %v", err)
	}
	obf.Config.Obfuscation.Identifiers.Rename = true

	_, err = obf.ObfuscateCode("function computeTotal(price) { return price; }")
	if err != nil {
		log.Fatalf("Failed to obfuscate code: %v", err)
	}

	name, err := obf.LookupObfuscatedName("computeTotal", "identifier")
	if err != nil {
		log.Fatalf("Failed to look up name: %v", err)
	}

	fmt.Println(name != "")

	// Output: true
}
