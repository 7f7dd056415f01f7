// Package catalog maps store product ids to the number of coins they grant.
// The catalog is fixed for the lifetime of the process.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidCatalog = errors.New("invalid product catalog")

type Catalog struct {
	products map[string]int64
}

type file struct {
	Products map[string]int64 `yaml:"products"`
}

// New validates products and copies them into a Catalog.
func New(products map[string]int64) (*Catalog, error) {
	c := &Catalog{products: make(map[string]int64, len(products))}

	for id, coins := range products {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("%w: empty product id", ErrInvalidCatalog)
		}
		if coins <= 0 {
			return nil, fmt.Errorf("%w: product %q grants %d coins", ErrInvalidCatalog, id, coins)
		}

		c.products[id] = coins
	}

	return c, nil
}

// Load reads a YAML catalog of the form
//
//	products:
//	  coins_1000: 1000
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

func Decode(r io.Reader) (*Catalog, error) {
	var doc file

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	err := dec.Decode(&doc)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	return New(doc.Products)
}

// Lookup returns the coins granted by productID.
func (c *Catalog) Lookup(productID string) (int64, bool) {
	coins, ok := c.products[productID]
	return coins, ok
}

// Snapshot returns a copy of the whole catalog.
func (c *Catalog) Snapshot() map[string]int64 {
	return maps.Clone(c.products)
}
