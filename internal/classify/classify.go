// Package classify decides which single kind an attachment is shared as.
//
// Rules are tried in a fixed priority order and the first identifier the
// descriptor declares wins. Images and videos are usually also file URLs, so
// they must be tested before the generic file rule.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"go.klb.dev/sharekit/internal/item"
	"go.klb.dev/sharekit/internal/loader"
	"go.klb.dev/sharekit/internal/shareerr"
	"go.klb.dev/sharekit/internal/uti"
)

// Rule maps an identifier to the kind of item it produces.
type Rule struct {
	Type uti.Type
	Kind item.Kind
}

// Policy is an ordered rule chain.
type Policy []Rule

// TextRule classifies plain text. It is not part of DefaultPolicy, so text
// attachments are unsupported unless a caller opts in with WithText.
var TextRule = Rule{Type: uti.Text, Kind: item.KindText}

// DefaultPolicy is image, video, file, then url.
var DefaultPolicy = Policy{
	{Type: uti.Image, Kind: item.KindImage},
	{Type: uti.Movie, Kind: item.KindVideo},
	{Type: uti.FileURL, Kind: item.KindFile},
	{Type: uti.URL, Kind: item.KindURL},
}

// WithText returns a copy of p with TextRule appended, unless p already
// has it.
func (p Policy) WithText() Policy {
	if slices.Contains(p, TextRule) {
		return slices.Clone(p)
	}
	return append(slices.Clone(p), TextRule)
}

// Normalizer converts a loaded value into an item.
type Normalizer interface {
	Normalize(ctx context.Context, v loader.Value, kind item.Kind) (item.Item, error)
}

// Classifier classifies one descriptor at a time.
type Classifier struct {
	loader     loader.Loader
	normalizer Normalizer
	policy     Policy
	log        *slog.Logger
}

// New returns a Classifier. A nil policy means DefaultPolicy.
func New(l loader.Loader, n Normalizer, policy Policy, log *slog.Logger) *Classifier {
	if policy == nil {
		policy = DefaultPolicy
	}
	if log == nil {
		log = slog.Default()
	}
	return &Classifier{loader: l, normalizer: n, policy: policy, log: log}
}

// Classify loads d for the first matching rule and normalizes the result.
func (c *Classifier) Classify(ctx context.Context, d loader.Descriptor) (item.Item, error) {
	for _, r := range c.policy {
		if !d.Conforms(r.Type) {
			continue
		}
		c.log.Debug("attachment matched", "attachment", d.ID, "type", r.Type, "kind", r.Kind)
		v, err := c.loader.Load(ctx, d, r.Type)
		if err != nil {
			return item.Item{}, fmt.Errorf("load %s as %s: %w", d.ID, r.Type, err)
		}
		if v.Type == "" {
			v.Type = r.Type
		}
		return c.normalizer.Normalize(ctx, v, r.Kind)
	}
	return item.Item{}, fmt.Errorf("%w: %s declares %v", shareerr.ErrUnsupportedType, d.ID, d.Types)
}
