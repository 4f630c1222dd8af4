package provider

import (
	"errors"
	"strings"
)

var ErrProviderNotSupported = errors.New("gateway is not supported")

type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	items := make(map[string]Provider, len(providers))
	for _, p := range providers {
		items[p.Code()] = p
	}
	return &Registry{providers: items}
}

func (r *Registry) Get(code string) (Provider, error) {
	provider, ok := r.providers[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return nil, ErrProviderNotSupported
	}
	return provider, nil
}
