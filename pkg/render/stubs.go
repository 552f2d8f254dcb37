package render

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed stubs/*.stub
var stubFS embed.FS

// Stub returns the named stub template, e.g. Stub("model").
func Stub(name string) (string, error) {
	data, err := stubFS.ReadFile("stubs/" + name + ".stub")
	if err != nil {
		return "", fmt.Errorf("unknown stub %q: %w", name, err)
	}
	return string(data), nil
}

// MustStub is Stub for embedded names known at compile time.
func MustStub(name string) string {
	s, err := Stub(name)
	if err != nil {
		panic(err)
	}
	return s
}

// StubNames lists the embedded stub templates without their extension.
func StubNames() []string {
	entries, err := stubFS.ReadDir("stubs")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".stub"))
	}
	return names
}
