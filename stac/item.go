// Package stac holds the small part of the STAC Item model the footprint
// tools read and write.
package stac

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/url"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

const Version = "1.0.0"

type Link struct {
	Rel   string `json:"rel"`
	Href  string `json:"href"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

type Asset struct {
	Href  string   `json:"href"`
	Title string   `json:"title,omitempty"`
	Type  string   `json:"type,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Item is a STAC Item: a GeoJSON Feature with assets.
type Item struct {
	Type           string                 `json:"type"`
	StacVersion    string                 `json:"stac_version"`
	StacExtensions []string               `json:"stac_extensions,omitempty"`
	ID             string                 `json:"id"`
	Geometry       *geojson.Geometry      `json:"geometry"`
	BBox           []float64              `json:"bbox,omitempty"`
	Properties     map[string]interface{} `json:"properties"`
	Links          []Link                 `json:"links"`
	Assets         map[string]*Asset      `json:"assets"`
	Collection     string                 `json:"collection,omitempty"`
}

func NewItem(id string) *Item {
	return &Item{
		Type:        "Feature",
		StacVersion: Version,
		ID:          id,
		Properties:  make(map[string]interface{}),
		Links:       []Link{},
		Assets:      make(map[string]*Asset),
	}
}

// ReadItem decodes the item stored at path and records path as its self
// link when it has none.
func ReadItem(p string) (*Item, error) {
	raw, err := ioutil.ReadFile(p)
	if err != nil {
		return nil, errors.Wrapf(err, "reading item %s", p)
	}
	item, err := DecodeItem(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding item %s", p)
	}
	if len(item.SelfHref()) == 0 {
		abs, err := filepath.Abs(p)
		if err == nil {
			item.SetSelfHref(abs)
		}
	}
	return item, nil
}

func DecodeItem(raw []byte) (*Item, error) {
	item := &Item{}
	if err := json.Unmarshal(raw, item); err != nil {
		return nil, err
	}
	if item.Type != "Feature" {
		return nil, errors.Errorf("not a STAC Item: type %q", item.Type)
	}
	if item.Assets == nil {
		item.Assets = make(map[string]*Asset)
	}
	if item.Properties == nil {
		item.Properties = make(map[string]interface{})
	}
	return item, nil
}

// Encode renders the item as indented JSON.
func (item *Item) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(item); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (item *Item) Write(p string) error {
	b, err := item.Encode()
	if err != nil {
		return err
	}
	return ioutil.WriteFile(p, b, 0644)
}

func (item *Item) SelfHref() string {
	for _, l := range item.Links {
		if l.Rel == "self" {
			return l.Href
		}
	}
	return ""
}

func (item *Item) SetSelfHref(href string) {
	for i, l := range item.Links {
		if l.Rel == "self" {
			item.Links[i].Href = href
			return
		}
	}
	item.Links = append(item.Links, Link{Rel: "self", Href: href, Type: "application/json"})
}

// AbsoluteHref resolves the HREF of an asset against the item's self
// link. The boolean is false when the asset is missing or its HREF is
// relative and the item has no self link.
func (item *Item) AbsoluteHref(key string) (string, bool) {
	asset, ok := item.Assets[key]
	if !ok || asset == nil || len(asset.Href) == 0 {
		return "", false
	}
	href := asset.Href
	if isAbsolute(href) {
		return href, true
	}

	self := item.SelfHref()
	if len(self) == 0 || !isAbsolute(self) {
		return "", false
	}

	if u, err := url.Parse(self); err == nil && len(u.Scheme) > 1 {
		rel, err := url.Parse(href)
		if err != nil {
			return "", false
		}
		return u.ResolveReference(rel).String(), true
	}
	if filepath.IsAbs(self) {
		return filepath.Join(filepath.Dir(self), filepath.FromSlash(href)), true
	}
	return path.Join(path.Dir(self), href), true
}

func isAbsolute(href string) bool {
	if filepath.IsAbs(href) || strings.HasPrefix(href, "/") {
		return true
	}
	u, err := url.Parse(href)
	// a single letter scheme is a windows drive
	return err == nil && len(u.Scheme) > 1
}

// AssetKeys returns the assets to try, in order. With no names every
// asset is returned, sorted by key.
func (item *Item) AssetKeys(names []string) []string {
	var keys []string
	if len(names) > 0 {
		for _, n := range names {
			if _, ok := item.Assets[n]; ok {
				keys = append(keys, n)
			}
		}
		return keys
	}
	for k := range item.Assets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// OrbGeometry returns the item geometry, nil if it has none.
func (item *Item) OrbGeometry() orb.Geometry {
	if item.Geometry == nil {
		return nil
	}
	return item.Geometry.Geometry()
}

// SetGeometry sets the geometry and its ordinary bounds as bbox.
func (item *Item) SetGeometry(g orb.Geometry) {
	b := g.Bound()
	item.SetGeometryAndBBox(g, []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]})
}

func (item *Item) SetGeometryAndBBox(g orb.Geometry, bbox []float64) {
	item.Geometry = geojson.NewGeometry(g)
	item.BBox = bbox
}
