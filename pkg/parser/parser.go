package parser

import (
	"bytes"
	"regexp"

	"github.com/cuemby/siloflow/pkg/metrics"
	"github.com/cuemby/siloflow/pkg/types"
)

// Parser matches each line of a raw buffer against a schema's regex
// and accumulates the captures into a RowBatch.
type Parser struct {
	schema types.Schema
	regex  *regexp.Regexp
	names  []string
}

// New compiles schema.Regex. Compilation happens once at Parser
// construction so a malformed schema regex fails once, when the Parser
// is built, rather than on every line parsed.
func New(schema types.Schema) (*Parser, error) {
	re, err := regexp.Compile(schema.Regex)
	if err != nil {
		return nil, types.Wrap(types.KindInvalidInput, "compile schema regex", err).WithContext("", "", schema.ID)
	}
	return &Parser{
		schema: schema,
		regex:  re,
		names:  re.SubexpNames(),
	}, nil
}

// Parse splits buf on '\n' and matches each non-empty line against
// the schema regex, building one RowBatch. A line that fails to match
// is a parse miss, not a fatal error: it increments the parse-miss
// counter and is skipped, which is the behavior the Rust prototype's
// unconditional `self.regex.captures(line).unwrap()` panic lacked.
func (p *Parser) Parse(buf types.RawBuffer) *types.RowBatch {
	batch := types.NewRowBatch(p.schema)

	lines := bytes.Split(buf.Bytes, []byte("\n"))
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}

		match := p.regex.FindSubmatch(line)
		if match == nil {
			metrics.ParseMisses.Inc()
			continue
		}

		row := make(map[string]*string, len(p.schema.Columns))
		for i, name := range p.names {
			if i == 0 || name == "" {
				continue
			}
			if match[i] == nil {
				row[name] = nil
				continue
			}
			v := string(match[i])
			row[name] = &v
		}
		batch.AppendRow(row)
		metrics.EventsParsed.Inc()
	}

	return batch
}
