// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package seed loads the sample catalog.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/sakil470004/tea-with-me/services/storefront/catalog"
	"github.com/sakil470004/tea-with-me/services/storefront/datatypes"
)

// Message is returned by POST /api/seed on success.
const Message = "Sample products added successfully!"

//go:embed products.yaml
var sampleYAML []byte

// Parse decodes and validates a YAML list of products. Keys are the
// lower-cased field names, which match the product JSON names.
func Parse(data []byte) ([]*datatypes.Product, error) {
	var inputs []datatypes.ProductInput
	if err := yaml.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("decode sample products: %w", err)
	}

	products := make([]*datatypes.Product, 0, len(inputs))
	for i := range inputs {
		if err := inputs[i].Validate(); err != nil {
			return nil, fmt.Errorf("sample product %d (%q): %w", i, inputs[i].Title, err)
		}
		p := &datatypes.Product{}
		inputs[i].Apply(p)
		products = append(products, p)
	}
	return products, nil
}

// Products returns a fresh copy of the built-in sample catalog.
func Products() ([]*datatypes.Product, error) {
	return Parse(sampleYAML)
}

// Run inserts the sample catalog into store and returns how many products
// were added. Existing products are kept, so running it twice duplicates
// the samples.
func Run(ctx context.Context, store *catalog.Store) (int, error) {
	products, err := Products()
	if err != nil {
		return 0, err
	}
	if err := store.InsertMany(ctx, products); err != nil {
		return 0, err
	}
	return len(products), nil
}
