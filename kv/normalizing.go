package kv

import "strings"

// Normalizing is a store that treats underscores in keys as spaces, trims keys
// and values, deletes keys case-insensitively, and separates concatenated
// values with a single space.
type Normalizing struct {
	data *orderedMap
}

func NewNormalizing() *Normalizing {
	return &Normalizing{data: newOrderedMap()}
}

func normalizeKey(key string) string {
	return strings.TrimSpace(strings.ReplaceAll(key, "_", " "))
}

// Set replaces the value of key. The key moves to the end of the insertion order.
func (n *Normalizing) Set(key, value string) {
	key = normalizeKey(key)
	n.data.remove(key)
	n.data.put(key, strings.TrimSpace(value))
}

func (n *Normalizing) Add(key, value string) {
	key = normalizeKey(key)
	value = strings.TrimSpace(value)
	prev, _ := n.data.get(key)

	if isDigits(strings.TrimSpace(prev)) && isDigits(value) {
		n.data.put(key, sumDigits(strings.TrimSpace(prev), value))
		return
	}

	sep := ""
	if prev != "" && !strings.HasSuffix(prev, " ") {
		sep = " "
	}
	n.data.put(key, strings.TrimSpace(prev+sep+value))
}

// Delete removes the first key that matches key ignoring case and treating
// underscores and spaces as the same character.
func (n *Normalizing) Delete(key string) {
	target := strings.ToLower(normalizeKey(key))
	for _, k := range n.data.keys {
		nk := strings.ToLower(normalizeKey(k))
		if nk == target ||
			strings.ReplaceAll(nk, " ", "_") == target ||
			strings.ReplaceAll(nk, "_", " ") == target {
			n.data.remove(k)
			return
		}
	}
}

func (n *Normalizing) Read(key string) string {
	if v, ok := n.data.get(normalizeKey(key)); ok {
		return v
	}
	return NotFound
}

func (n *Normalizing) Snapshot() Snapshot {
	return n.data.snapshot()
}

func (n *Normalizing) Apply(cmd Command) {
	apply(n, cmd)
}
