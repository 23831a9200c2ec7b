package guard

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Flames4fun/csl-core/schema"
)

// Compile parses YAML constitution source and validates every constraint,
// including compiling any regular expressions, so evaluation never has to
// deal with malformed rules.
func Compile(src []byte) (*Constitution, error) {
	var c Constitution
	if err := yaml.Unmarshal(src, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrConstitutionInvalid, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads and compiles a constitution file.
func Load(path string) (*Constitution, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read constitution: %w", err)
	}
	c, err := Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", path, err)
	}
	return c, nil
}

// MustCompile is Compile for static constitutions in demos and tests.
func MustCompile(src string) *Constitution {
	c, err := Compile([]byte(src))
	if err != nil {
		panic(err)
	}
	return c
}
