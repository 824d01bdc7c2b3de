package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var builtin []byte

// Prompt keys.
const (
	Translate = "translate"
	Reply     = "reply"
	ReplyJSON = "reply_json"
	Recipe    = "recipe"
)

// Pair holds the system and user templates of one completion call.
type Pair struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// Data is the template input shared by every prompt.
type Data struct {
	EnglishText string
	MomInput    string
	Topic       string
}

type compiled struct {
	system *template.Template
	user   *template.Template
}

// Set is an immutable collection of parsed prompt templates.
type Set struct {
	pairs map[string]compiled
}

// Default returns the built-in prompts.
func Default() (*Set, error) {
	return Parse(builtin)
}

// Load returns the built-in prompts with any entries from the YAML file at
// path layered on top. An empty path yields the defaults.
func Load(path string) (*Set, error) {
	raw, err := decode(builtin)
	if err != nil {
		return nil, fmt.Errorf("decode builtin prompts: %w", err)
	}

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read prompts file %q: %w", path, err)
		}
		overrides, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("parse prompts file %q: %w", path, err)
		}
		for key, pair := range overrides {
			base := raw[key]
			if pair.System != "" {
				base.System = pair.System
			}
			if pair.User != "" {
				base.User = pair.User
			}
			raw[key] = base
		}
	}

	return compile(raw)
}

// Parse builds a Set from YAML.
func Parse(data []byte) (*Set, error) {
	raw, err := decode(data)
	if err != nil {
		return nil, err
	}
	return compile(raw)
}

func decode(data []byte) (map[string]Pair, error) {
	var raw map[string]Pair
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = make(map[string]Pair)
	}
	return raw, nil
}

func compile(raw map[string]Pair) (*Set, error) {
	set := &Set{pairs: make(map[string]compiled, len(raw))}
	for key, pair := range raw {
		system, err := template.New(key + ".system").Option("missingkey=error").Parse(pair.System)
		if err != nil {
			return nil, fmt.Errorf("prompt %s.system: %w", key, err)
		}
		user, err := template.New(key + ".user").Option("missingkey=error").Parse(pair.User)
		if err != nil {
			return nil, fmt.Errorf("prompt %s.user: %w", key, err)
		}
		set.pairs[key] = compiled{system: system, user: user}
	}

	for _, key := range []string{Translate, Reply, ReplyJSON, Recipe} {
		if _, ok := set.pairs[key]; !ok {
			return nil, fmt.Errorf("prompt %q is not defined", key)
		}
	}
	return set, nil
}

// Render executes the system and user templates for key.
func (s *Set) Render(key string, data Data) (system, user string, err error) {
	pair, ok := s.pairs[key]
	if !ok {
		return "", "", fmt.Errorf("prompt %q is not defined", key)
	}

	var buf bytes.Buffer
	if err := pair.system.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render %s.system: %w", key, err)
	}
	system = buf.String()

	buf.Reset()
	if err := pair.user.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render %s.user: %w", key, err)
	}
	return system, buf.String(), nil
}
