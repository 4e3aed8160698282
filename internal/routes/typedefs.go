package routes

import (
	"fmt"

	"github.com/tkrajina/typescriptify-golang-structs/typescriptify"
)

// TypeDefinitions renders TypeScript interfaces for Entry and Parameter.
// TypeScript adapters ship them as types/routes.ts so handlers can type the
// route metadata they receive.
func TypeDefinitions() (string, error) {
	converter := typescriptify.New()
	converter.CreateInterface = true
	converter.BackupDir = ""
	converter.Add(Entry{})
	converter.Add(HandlerMethod{})

	out, err := converter.Convert(nil)
	if err != nil {
		return "", fmt.Errorf("convert route types: %w", err)
	}
	return out, nil
}
