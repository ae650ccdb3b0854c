package metadata

import "strings"

type parseState int

const (
	stateScanning parseState = iota
	stateBufferingArray
)

// blockParser consumes the lines of a comment block one at a time.
// Multi-line arrays are buffered until a line whose trimmed form ends in "]".
type blockParser struct {
	state  parseState
	key    string
	buffer strings.Builder
	meta   Metadata
}

func extractBlock(content string) Metadata {
	match := commentBlock.FindStringSubmatch(content)
	if match == nil {
		return Metadata{}
	}

	p := &blockParser{meta: Metadata{}}
	for _, line := range strings.Split(match[1], "\n") {
		p.feed(strings.TrimSuffix(line, "\r"))
	}
	p.finish()
	return p.meta
}

func (p *blockParser) feed(line string) {
	switch p.state {
	case stateBufferingArray:
		p.buffer.WriteByte('\n')
		p.buffer.WriteString(line)
		if strings.HasSuffix(strings.TrimSpace(line), "]") {
			p.meta[p.key] = ParseArray(p.buffer.String())
			p.reset()
		}
	case stateScanning:
		m := keyValueLine.FindStringSubmatch(line)
		if m == nil {
			return
		}
		key := strings.TrimSpace(m[1])
		value := strings.TrimSuffix(strings.TrimSpace(m[2]), ",")
		value = strings.TrimSpace(value)

		if isArrayKey(key) && strings.HasPrefix(value, "[") {
			if strings.HasSuffix(value, "]") {
				p.meta[key] = ParseArray(value)
				return
			}
			p.state = stateBufferingArray
			p.key = key
			p.buffer.WriteString(value)
			return
		}
		p.meta[key] = unquote(value)
	}
}

// finish resolves an array left open by a truncated block.
func (p *blockParser) finish() {
	if p.state == stateBufferingArray {
		p.meta[p.key] = []any{}
		p.reset()
	}
}

func (p *blockParser) reset() {
	p.state = stateScanning
	p.key = ""
	p.buffer.Reset()
}
