package component

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
	jsonpatch "github.com/evanphx/json-patch"

	"github.com/zeusync/yame/pkg/generic"
)

// Equal reports whether a and b have the same tags, names and values at every
// node. Listeners are not compared.
func Equal(a, b Component) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(Snapshot(a), Snapshot(b))
}

// Fingerprint returns a stable 64-bit hash of the serialized shape of c.
// Equal trees have equal fingerprints.
func Fingerprint(c Component) (uint64, error) {
	buf := generic.Buffers.Get()
	defer generic.Buffers.Put(buf)
	if err := json.NewEncoder(buf).Encode(Snapshot(c)); err != nil {
		return 0, fmt.Errorf("fingerprint %s %q: %w", c.Type(), c.Name(), err)
	}
	return xxhash.Sum64(buf.Bytes()), nil
}

// Diff returns a JSON merge patch (RFC 7386) turning prev into next.
func Diff(prev, next Data) ([]byte, error) {
	a, err := json.Marshal(prev)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(next)
	if err != nil {
		return nil, err
	}
	return jsonpatch.CreateMergePatch(a, b)
}

// ApplyPatch applies a JSON merge patch to d.
func ApplyPatch(d Data, patch []byte) (Data, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return Data{}, err
	}
	merged, err := jsonpatch.MergePatch(raw, patch)
	if err != nil {
		return Data{}, malformed("", "invalid patch", err)
	}
	dec := json.NewDecoder(bytes.NewReader(merged))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Data{}, malformed("", "invalid patch result", err)
	}
	return ParseData(v)
}

// Patch applies a merge patch to the serialized shape of c and rebuilds the
// result with r. c itself is left untouched.
func (r *Registry) Patch(c Component, patch []byte) (Component, error) {
	d, err := r.Serialize(c)
	if err != nil {
		return nil, err
	}
	patched, err := ApplyPatch(d, patch)
	if err != nil {
		return nil, err
	}
	return r.DeserializeData(patched)
}
