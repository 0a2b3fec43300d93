package kv

// Plain is a store that matches keys exactly and concatenates non-numeric
// values without a separator.
type Plain struct {
	data *orderedMap
}

func NewPlain() *Plain {
	return &Plain{data: newOrderedMap()}
}

func (p *Plain) Set(key, value string) {
	p.data.put(key, value)
}

func (p *Plain) Add(key, value string) {
	current, ok := p.data.get(key)
	if !ok {
		p.data.put(key, value)
		return
	}
	if isDigits(current) && isDigits(value) {
		p.data.put(key, sumDigits(current, value))
		return
	}
	p.data.put(key, current+value)
}

func (p *Plain) Delete(key string) {
	p.data.remove(key)
}

func (p *Plain) Read(key string) string {
	if v, ok := p.data.get(key); ok {
		return v
	}
	return NotFound
}

func (p *Plain) Snapshot() Snapshot {
	return p.data.snapshot()
}

func (p *Plain) Apply(cmd Command) {
	apply(p, cmd)
}
