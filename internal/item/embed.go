package item

import (
	"github.com/google/uuid"
)

// Embed is an identity-bearing sub-document nested inside an item's payload.
// It wraps the live payload fragment, so Set mutates the parent payload in
// place. An embed has no row of its own; its identity is the "id" key of the
// fragment.
type Embed struct {
	fragment map[string]any
}

// NewEmbed builds an unattached embed from attrs, generating an id when the
// attrs carry none. The embed does not touch any payload until assigned.
func NewEmbed(attrs map[string]any) Embed {
	frag := make(map[string]any, len(attrs)+1)
	for k, v := range attrs {
		frag[k] = v
	}
	if id, ok := frag["id"].(string); !ok || id == "" {
		frag["id"] = uuid.NewString()
	}
	return Embed{fragment: frag}
}

func wrapEmbed(fragment map[string]any) Embed {
	return Embed{fragment: fragment}
}

func (e Embed) ID() string {
	id, _ := e.fragment["id"].(string)
	return id
}

func (e Embed) Get(key string) any {
	return e.fragment[key]
}

func (e Embed) Set(key string, value any) {
	e.fragment[key] = value
}

// Fragment exposes the underlying payload fragment.
func (e Embed) Fragment() map[string]any {
	return e.fragment
}
