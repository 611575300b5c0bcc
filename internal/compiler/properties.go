package compiler

import (
	"bufio"
	"bytes"
	"strings"
)

// parseProperties reads the key/value description format: "key=value" or
// "key: value" per line, "#" and "!" comments, and trailing "\" continuations.
func parseProperties(data []byte) (map[string]any, error) {
	out := make(map[string]any)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var logical strings.Builder
	flush := func() {
		line := logical.String()
		logical.Reset()
		if line == "" {
			return
		}
		key, value := splitProperty(line)
		if key != "" {
			out[key] = value
		}
	}

	for scanner.Scan() {
		line := strings.TrimLeft(scanner.Text(), " \t\f")
		if logical.Len() == 0 && (line == "" || line[0] == '#' || line[0] == '!') {
			continue
		}
		if cont, ok := strings.CutSuffix(line, `\`); ok && !strings.HasSuffix(cont, `\`) {
			logical.WriteString(cont)
			continue
		}
		logical.WriteString(line)
		flush()
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return out, nil
}

func splitProperty(line string) (string, string) {
	idx := strings.IndexAny(line, "=:")
	if idx < 0 {
		return strings.TrimSpace(line), ""
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:])
}
