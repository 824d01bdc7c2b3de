package tokens

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"mom-assistant/internal/apperrors"
)

// Counter counts tokens with the tiktoken encoding of a model, falling back
// to cl100k_base for models the tokenizer does not know.
type Counter struct {
	mu     sync.Mutex
	codecs map[string]tokenizer.Codec
}

func NewCounter() *Counter {
	return &Counter{codecs: make(map[string]tokenizer.Codec)}
}

// Count returns the number of tokens text encodes to under model.
func (c *Counter) Count(model, text string) (int, error) {
	codec, err := c.codec(model)
	if err != nil {
		return 0, err
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("encode text: %w", err)
	}
	return len(ids), nil
}

func (c *Counter) codec(model string) (tokenizer.Codec, error) {
	key := strings.ToLower(strings.TrimSpace(model))

	c.mu.Lock()
	defer c.mu.Unlock()

	if codec, ok := c.codecs[key]; ok {
		return codec, nil
	}

	codec, err := tokenizer.ForModel(tokenizer.Model(key))
	if err != nil {
		codec, err = tokenizer.Get(tokenizer.Cl100kBase)
		if err != nil {
			return nil, fmt.Errorf("load tokenizer encoding: %w", err)
		}
	}
	c.codecs[key] = codec
	return codec, nil
}

// Guard rejects user input longer than Max tokens. A zero Max disables it.
type Guard struct {
	Counter *Counter
	Model   string
	Max     int
}

func NewGuard(model string, max int) *Guard {
	return &Guard{Counter: NewCounter(), Model: model, Max: max}
}

// Check returns a validation error naming field when text is over budget.
func (g *Guard) Check(field, text string) error {
	if g == nil || g.Max <= 0 || text == "" {
		return nil
	}
	n, err := g.Counter.Count(g.Model, text)
	if err != nil {
		return err
	}
	if n > g.Max {
		return apperrors.Validation(field, fmt.Sprintf("%s is too long (%d tokens, limit %d)", field, n, g.Max))
	}
	return nil
}
