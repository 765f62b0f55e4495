package settings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads a flat mapping of option keys to scalar values.
// Booleans become "1" or "0"; other scalars keep their literal text.
//
//	oauth2_client_id: my-client
//	oauth2_scopes: profile email
//	oauth2_account_creation: true
func LoadYAML(r io.Reader) (map[string]string, error) {
	var raw map[string]yaml.Node
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("settings: parse yaml: %w", err)
	}

	values := make(map[string]string, len(raw))
	for key, node := range raw {
		if !IsKnown(key) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		if node.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: %s must be a scalar", ErrInvalidValue, key)
		}

		value := node.Value
		if node.Tag == "!!null" {
			value = ""
		}
		if node.Tag == "!!bool" {
			var b bool
			if err := node.Decode(&b); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidValue, key, err)
			}
			value = "0"
			if b {
				value = "1"
			}
		}
		values[key] = value
	}

	return values, nil
}

// Seed writes values into store and returns the keys written, sorted.
// Without overwrite, options that already exist are left alone.
func Seed(ctx context.Context, store Store, values map[string]string, overwrite bool) ([]string, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	written := make([]string, 0, len(keys))
	for _, key := range keys {
		if !overwrite {
			_, err := store.Get(ctx, key)
			if err == nil {
				continue
			}
			if !errors.Is(err, ErrNotFound) {
				return written, err
			}
		}
		if err := store.Set(ctx, key, values[key]); err != nil {
			return written, err
		}
		written = append(written, key)
	}

	return written, nil
}
